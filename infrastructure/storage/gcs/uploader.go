package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

const uploadTimeout = 2 * time.Minute

// Mirror copia arquivos locais para um bucket
type Mirror interface {
	UploadFile(ctx context.Context, filePath string) (string, error)
	Close() error
}

type Uploader struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewUploader usa Application Default Credentials; opts permite trocar endpoint e autenticação
func NewUploader(ctx context.Context, output config.Output, opts ...option.ClientOption) (*Uploader, error) {
	if output.GCSBucket == "" {
		return nil, apperrors.Configuration("output.gcs_bucket", "bucket is required to mirror the output")
	}

	if output.GCSEndpoint != "" {
		opts = append(opts, option.WithEndpoint(output.GCSEndpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Uploader{
		client: client,
		bucket: output.GCSBucket,
		prefix: strings.Trim(output.GCSPrefix, "/"),
	}, nil
}

// ObjectName monta o nome do objeto a partir do prefixo e do nome do arquivo
func (u *Uploader) ObjectName(filePath string) string {
	name := path.Base(strings.ReplaceAll(filePath, string(os.PathSeparator), "/"))
	if u.prefix == "" {
		return name
	}
	return u.prefix + "/" + name
}

// UploadFile envia o arquivo e retorna a URI gs:// do objeto criado
func (u *Uploader) UploadFile(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	objectName := u.ObjectName(filePath)
	w := u.client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	w.ChunkSize = 0
	if strings.HasSuffix(objectName, ".csv") {
		w.ContentType = "text/csv"
	} else {
		w.ContentType = "application/json"
	}

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", classify(err, "copy file to GCS writer")
	}

	if err := w.Close(); err != nil {
		return "", classify(err, "finalize upload")
	}

	uri := fmt.Sprintf("gs://%s/%s", u.bucket, objectName)
	logrus.WithField("uri", uri).Info("Arquivo espelhado no GCS")

	return uri, nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}

// classify trata 5xx e limite de requisições como falha temporária
func classify(err error, message string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests {
			return apperrors.TransientServer(err, "storage "+message)
		}
	}
	return fmt.Errorf("%s: %w", message, err)
}
