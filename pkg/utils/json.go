package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJson formata qualquer valor como JSON indentado, para logs de depuração
func PrettyJson(in any) string {
	if raw, ok := in.([]byte); ok {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return string(raw)
		}
		in = decoded
	}

	buffer, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		logrus.WithError(err).Debug("Não foi possível formatar JSON")
		return ""
	}

	return string(buffer)
}
