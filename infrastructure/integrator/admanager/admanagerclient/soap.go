package admanagerclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	admanagerdomain "github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

// call envia uma operação SOAP e decodifica o conteúdo da resposta em out
func (c *AdManagerClient) call(ctx context.Context, operation string, request any, out any) error {
	envelope := admanagerdomain.Envelope{
		Header: admanagerdomain.EnvelopeHeader{
			RequestHeader: admanagerdomain.RequestHeader{
				Xmlns:           c.namespace,
				NetworkCode:     c.session.NetworkCode,
				ApplicationName: c.applicationName,
			},
		},
		Body: admanagerdomain.EnvelopeBody{Content: request},
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("erro ao montar envelope %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return fmt.Errorf("erro ao criar a requisição %s: %w", operation, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `""`)

	logger := logrus.WithField("operation", operation)

	resp, err := c.session.HTTPClient().Do(req)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			return appErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.WithError(err).Warn("Erro ao fazer a requisição")
		return apperrors.TransientServer(err, "cannot reach Ad Manager")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.TransientServer(err, "connection dropped while reading the Ad Manager response")
	}

	var envelopeResp admanagerdomain.ResponseEnvelope
	if err := xml.Unmarshal(body, &envelopeResp); err != nil {
		if statusErr := statusError(resp.StatusCode); statusErr != nil {
			return statusErr
		}
		logger.WithError(err).Error("Resposta SOAP ilegível")
		return fmt.Errorf("resposta SOAP ilegível em %s: %w", operation, err)
	}

	if fault := envelopeResp.Body.Fault; fault != nil {
		logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"errors": fault.ErrorStrings(),
		}).Warn("Ad Manager retornou um fault")
		return faultError(fault)
	}

	if statusErr := statusError(resp.StatusCode); statusErr != nil {
		return statusErr
	}

	if err := xml.Unmarshal(envelopeResp.Body.Content, out); err != nil {
		return fmt.Errorf("erro ao decodificar resposta %s: %w", operation, err)
	}

	return nil
}

func faultError(fault *admanagerdomain.Fault) error {
	switch fault.Class() {
	case admanagerdomain.FaultClassTransient:
		return apperrors.TransientServer(fault, "Ad Manager server error")
	case admanagerdomain.FaultClassAuth:
		return apperrors.Authentication(fault, "Ad Manager rejected the credentials or the network code")
	case admanagerdomain.FaultClassVersion:
		return apperrors.ReportGeneration(fault, "Ad Manager rejected the request, the API version is probably deprecated")
	}
	return apperrors.ReportGeneration(fault, "Ad Manager rejected the report, check used dimensions, metrics and API version")
}

// statusError classifica respostas sem fault pelo status HTTP
func statusError(status int) error {
	switch {
	case status >= 200 && status <= 299:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.Authentication(httpStatusError(status), "Ad Manager rejected the credentials")
	case status >= 500:
		return apperrors.TransientServer(httpStatusError(status), "Ad Manager server error")
	}
	return apperrors.ReportGeneration(httpStatusError(status), "unexpected Ad Manager response")
}

func httpStatusError(status int) error {
	return fmt.Errorf("HTTP %d %s", status, http.StatusText(status))
}
