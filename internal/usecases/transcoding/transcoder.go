package transcoding

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

const readBufferSize = 64 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Transcode consome o CSV bruto linha a linha. O cabeçalho é devolvido como
// lista de colunas e não é gravado; as demais linhas vão para dst em UTF-8.
func Transcode(src io.Reader, dst io.Writer, sourceEncoding string) ([]string, error) {
	reader, validate, err := decodingReader(src, sourceEncoding)
	if err != nil {
		return nil, err
	}

	in := bufio.NewReaderSize(reader, readBufferSize)

	headerLine, err := in.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("erro ao ler o cabeçalho: %w", err)
	}
	headerLine = bytes.TrimPrefix(headerLine, utf8BOM)

	if validate && !utf8.Valid(headerLine) {
		return nil, apperrors.Encoding(nil, fmt.Sprintf("invalid %s byte sequence on line 1", sourceEncoding))
	}

	columns, err := parseHeader(headerLine)
	if err != nil {
		return nil, err
	}

	lineNumber := 1
	var rows int
	for {
		line, readErr := in.ReadBytes('\n')
		if len(line) > 0 {
			lineNumber++

			if validate && !utf8.Valid(line) {
				return nil, apperrors.Encoding(nil,
					fmt.Sprintf("invalid %s byte sequence on line %d", sourceEncoding, lineNumber))
			}

			if _, err := dst.Write(line); err != nil {
				return nil, fmt.Errorf("erro ao gravar a linha %d: %w", lineNumber, err)
			}
			rows++
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			var decodeErr transformError
			if errors.As(readErr, &decodeErr) {
				return nil, apperrors.Encoding(readErr,
					fmt.Sprintf("cannot decode %s input after line %d", sourceEncoding, lineNumber))
			}
			return nil, fmt.Errorf("erro ao ler a linha %d: %w", lineNumber+1, readErr)
		}
	}

	logrus.WithFields(logrus.Fields{
		"columns": len(columns),
		"rows":    rows,
	}).Debug("Resultado convertido")

	return columns, nil
}

// TranscodeFile converte srcPath em dstPath. Em caso de erro o arquivo parcial é removido.
func TranscodeFile(srcPath, dstPath, sourceEncoding string) (columns []string, err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir o resultado bruto: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a tabela de saída: %w", err)
	}
	defer func() {
		if err != nil {
			dst.Close()
			_ = os.Remove(dstPath)
		}
	}()

	out := bufio.NewWriterSize(dst, readBufferSize)

	columns, err = Transcode(src, out, sourceEncoding)
	if err != nil {
		return nil, err
	}

	if err = out.Flush(); err != nil {
		return nil, fmt.Errorf("erro ao gravar a tabela de saída: %w", err)
	}
	if err = dst.Close(); err != nil {
		return nil, fmt.Errorf("erro ao fechar a tabela de saída: %w", err)
	}

	return columns, nil
}

func parseHeader(line []byte) ([]string, error) {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, apperrors.EmptyResult()
	}

	r := csv.NewReader(bytes.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	columns, err := r.Read()
	if err != nil {
		return nil, apperrors.Encoding(err, "cannot parse the report header")
	}
	return columns, nil
}

// decodingReader devolve um leitor em UTF-8. Para utf-8 a validação é feita
// por linha, para reportar o número da linha inválida.
func decodingReader(src io.Reader, name string) (io.Reader, bool, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, false, err
	}

	if enc == unicode.UTF8 {
		return src, true, nil
	}

	return transform.NewReader(src, transformErrorWrapper{enc.NewDecoder()}), false, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, apperrors.Configuration("source_encoding", fmt.Sprintf("unknown encoding %q", name))
	}
	return enc, nil
}

// transformError marca erros vindos do decodificador
type transformError struct {
	err error
}

func (e transformError) Error() string { return e.err.Error() }
func (e transformError) Unwrap() error { return e.err }

type transformErrorWrapper struct {
	transform.Transformer
}

func (w transformErrorWrapper) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	nDst, nSrc, err := w.Transformer.Transform(dst, src, atEOF)
	if err != nil && err != transform.ErrShortDst && err != transform.ErrShortSrc {
		return nDst, nSrc, transformError{err}
	}
	return nDst, nSrc, err
}
