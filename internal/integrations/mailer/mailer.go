package mailer

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/pkg/qrtoken"
)

const qrImageSize = 256

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Mailer отправляет письма-подтверждения записи с QR-кодом талона.
// Отправка выполняется после фиксации записи и не влияет на её результат
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
	logger  Logger
}

// New создает mailer из конфигурации.
// При enabled=false отправка превращается в no-op с логированием
func New(cfg config.MailerConfig, logger Logger) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		enabled: cfg.Enabled,
		logger:  logger,
	}
}

// SendConfirmation отправляет подтверждение записи с вложенным QR-кодом талона
func (m *Mailer) SendConfirmation(c Confirmation) error {
	if !m.enabled {
		m.logger.Info("mailer: disabled, skipping confirmation for token=%s", c.TokenCode)
		return nil
	}

	payload := qrtoken.NewPayload(
		c.TokenCode,
		c.CitizenName,
		c.ServiceName,
		c.Department,
		c.AppointmentAt,
		c.PredictedWaitMinutes,
	)

	png, err := qrtoken.EncodePNG(payload, qrImageSize)
	if err != nil {
		return fmt.Errorf("mailer: failed to build qr code: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", c.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Подтверждение записи: талон %s", c.TokenCode))
	msg.SetBody("text/html", confirmationBody(c))
	msg.Embed("ticket.png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, werr := w.Write(png)
		return werr
	}))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailer: failed to send confirmation to %s: %w", c.Email, err)
	}

	m.logger.Info("mailer: confirmation sent to %s for token=%s", c.Email, c.TokenCode)
	return nil
}

func confirmationBody(c Confirmation) string {
	return fmt.Sprintf(
		`<h2>Запись подтверждена</h2>
<p>Уважаемый(ая) %s!</p>
<p>Ваш талон: <b>%s</b></p>
<p>Услуга: %s (%s)</p>
<p>Дата и время: %s</p>
<p>Ожидаемое время ожидания: %d мин.</p>
<p>Предъявите QR-код из вложения на стойке регистрации.</p>`,
		c.CitizenName,
		c.TokenCode,
		c.ServiceName,
		c.Department,
		c.AppointmentAt.Format("02.01.2006 15:04"),
		c.PredictedWaitMinutes,
	)
}
