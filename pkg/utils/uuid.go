package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID gera um identificador aleatório seguro para nomes de arquivo
func GenerateID(length int) (string, error) {
	return gonanoid.Generate(characters, length)
}
