package tokencode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet набор символов для кодов талонов.
// Без неоднозначных символов (0/O, 1/I), чтобы код было удобно
// диктовать и вводить вручную.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generate генерирует случайный код заданной длины из Alphabet.
// Уникальность кода проверяется вызывающей стороной (optimistic
// collision check), здесь только генерация.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("tokencode: length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tokencode: failed to read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Generator обёртка для внедрения генератора как зависимости
type Generator struct{}

// Generate генерирует код через Generate пакета
func (Generator) Generate(length int) (string, error) {
	return Generate(length)
}
