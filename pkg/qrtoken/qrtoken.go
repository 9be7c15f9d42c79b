package qrtoken

import (
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload данные, зашиваемые в QR-код талона для check-in на стойке
type Payload struct {
	Token         string `json:"token"`
	Name          string `json:"name"`
	Service       string `json:"service"`
	Department    string `json:"department"`
	Datetime      string `json:"datetime"`
	EstimatedWait int    `json:"estimated_wait"`
}

// NewPayload собирает payload талона
func NewPayload(token, name, service, department string, at time.Time, estimatedWait int) Payload {
	return Payload{
		Token:         token,
		Name:          name,
		Service:       service,
		Department:    department,
		Datetime:      at.Format("2006-01-02 15:04"),
		EstimatedWait: estimatedWait,
	}
}

// EncodePNG кодирует payload в PNG с QR-кодом
func EncodePNG(p Payload, size int) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("qrtoken: failed to marshal payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrtoken: failed to encode qr: %w", err)
	}
	return png, nil
}
