package admanagerdomain

import (
	"regexp"
	"strings"
)

// Fault é o soap:Fault retornado pelo Ad Manager
type Fault struct {
	Code   string      `xml:"faultcode"`
	String string      `xml:"faultstring"`
	Detail FaultDetail `xml:"detail"`
}

type FaultDetail struct {
	APIException *APIExceptionFault `xml:"ApiExceptionFault"`
}

type APIExceptionFault struct {
	Message string     `xml:"message"`
	Errors  []APIError `xml:"errors"`
}

// APIError é um item de ApiExceptionFault; ErrorString tem o formato "Tipo.MOTIVO"
type APIError struct {
	FieldPath   string `xml:"fieldPath"`
	Trigger     string `xml:"trigger"`
	ErrorString string `xml:"errorString"`
	Reason      string `xml:"reason"`
}

// FaultClass agrupa os erros da API pelo tratamento que recebem
type FaultClass int

const (
	FaultClassRequest   FaultClass = iota // Consulta inválida, não adianta repetir
	FaultClassTransient                   // Falha do servidor, pode ser repetida
	FaultClassAuth                        // Credenciais rejeitadas ou sem permissão
	FaultClassVersion                     // Versão da API rejeitada
)

var errorStringRe = regexp.MustCompile(`[A-Za-z]+Error\.[A-Z_]+`)

func (f *Fault) Error() string {
	if f.Detail.APIException != nil && f.Detail.APIException.Message != "" {
		return f.Detail.APIException.Message
	}
	return f.String
}

// ErrorStrings lista os códigos de erro do fault. Sem detalhe estruturado,
// os códigos são extraídos do faultstring.
func (f *Fault) ErrorStrings() []string {
	var out []string
	if f.Detail.APIException != nil {
		for _, e := range f.Detail.APIException.Errors {
			if e.ErrorString != "" {
				out = append(out, e.ErrorString)
			}
		}
	}
	if len(out) == 0 {
		out = errorStringRe.FindAllString(f.String, -1)
	}
	return out
}

// Class classifica o fault. Um único erro não temporário basta para
// o fault inteiro não ser repetido.
func (f *Fault) Class() FaultClass {
	codes := f.ErrorStrings()
	if len(codes) == 0 {
		return FaultClassRequest
	}

	classes := make(map[FaultClass]bool, len(codes))
	for _, code := range codes {
		classes[classify(code)] = true
	}

	switch {
	case classes[FaultClassAuth]:
		return FaultClassAuth
	case classes[FaultClassVersion]:
		return FaultClassVersion
	case classes[FaultClassRequest]:
		return FaultClassRequest
	}
	return FaultClassTransient
}

func classify(code string) FaultClass {
	switch {
	case strings.HasPrefix(code, "ServerError."),
		strings.HasPrefix(code, "InternalApiError."),
		code == "QuotaError.EXCEEDED_QUOTA":
		return FaultClassTransient
	case strings.HasPrefix(code, "AuthenticationError."),
		strings.HasPrefix(code, "AuthorizationError."):
		return FaultClassAuth
	case strings.HasPrefix(code, "ApiVersionError."):
		return FaultClassVersion
	}
	return FaultClassRequest
}
