package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/vietanh2810/raffle-api/internal/domain"
)

const (
	approvalSubject = "🎟️ ¡TU COMPRA HA SIDO CONFIRMADA!"
	resendSubject   = "🎟️ Reenvío de Ticket Aprobado"
)

type Brand struct {
	Name         string
	LogoURL      string
	TikTokURL    string
	InstagramURL string
}

type emailData struct {
	Brand      Brand
	FullName   string
	Email      string
	RaffleName string
	Date       string
	Codes      []string
	Resend     bool
}

const emailLayout = `<div style="font-family: Arial, sans-serif; text-align: center; padding: 20px; border: 1px solid #ddd;">
{{- if .Brand.LogoURL}}
  <div style="margin-bottom: 20px;">
    <img src="{{.Brand.LogoURL}}" alt="Logo" style="width: 100px; height: 100px; border-radius: 50%;">
  </div>
{{- end}}
{{- if .Resend}}
  <p>Hola {{.FullName}}, aquí están nuevamente tus boletos aprobados para <strong>{{.RaffleName}}</strong> 🎉</p>
  <h2 style="color: #4CAF50;">✅ ¡Tu ticket sigue activo y aprobado!</h2>
{{- else}}
  <p>Hola {{.FullName}}, ¡Gracias por tu compra! {{.RaffleName}} 🎉</p>
  <h2 style="color: #4CAF50;">✅ ¡Felicidades tus tickets han sido aprobados!</h2>
{{- end}}
  <p><strong>Usuario:</strong> {{.FullName}}</p>
  <p><strong>📧 Correo asociado:</strong> {{.Email}}</p>
  <p><strong>📅 Fecha de aprobación:</strong> {{.Date}}</p>
  <p>Ticket(s) comprado(s) ({{len .Codes}}):</p>
  <div style="display: grid; grid-template-columns: repeat(auto-fill, minmax(150px, 1fr)); gap: 10px; padding: 10px;">
{{- range .Codes}}
    <div style="background: #f4f4f4; padding: 12px 16px; border-radius: 8px; font-size: 18px; font-weight: bold; border: 1px solid #ddd;">🎟️ {{.}}</div>
{{- end}}
  </div>
  <strong>Puedes comprar más y aumentar tus posibilidades de ganar.<br>Estos números son elegidos aleatoriamente.</strong>
  <p style="margin-top: 30px;"><strong>Saludos,</strong><br>Equipo de {{.Brand.Name}}</p>
{{- if or .Brand.TikTokURL .Brand.InstagramURL}}
  <p style="font-size: 14px; color: #666;">📲 ¡Síguenos en nuestras redes sociales!</p>
  <div>
  {{- if .Brand.TikTokURL}}
    <a href="{{.Brand.TikTokURL}}" target="_blank"><img src="https://cdn-icons-png.flaticon.com/512/3046/3046122.png" alt="TikTok" width="32" height="32"></a>
  {{- end}}
  {{- if .Brand.InstagramURL}}
    <a href="{{.Brand.InstagramURL}}" target="_blank"><img src="https://cdn-icons-png.flaticon.com/512/2111/2111463.png" alt="Instagram" width="32" height="32"></a>
  {{- end}}
  </div>
{{- end}}
</div>`

var emailTemplate = template.Must(template.New("email").Parse(emailLayout))

var (
	weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	months   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// formatDate renders t as a long Spanish date, e.g. "lunes, 3 de marzo de 2025".
func formatDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// ApprovalMessage builds the email sent right after a ticket is approved,
// or the reminder sent on resend.
func ApprovalMessage(brand Brand, ticket domain.Ticket, raffle domain.Raffle, now time.Time, resend bool) (Message, error) {
	data := emailData{
		Brand:      brand,
		FullName:   ticket.FullName,
		Email:      ticket.Email,
		RaffleName: raffle.Name,
		Date:       formatDate(now),
		Codes:      ticket.ApprovalCodes,
		Resend:     resend,
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("emailTemplate.Execute -> %w", err)
	}

	subject := approvalSubject
	if resend {
		subject = resendSubject
	}

	return Message{To: ticket.Email, Subject: subject, HTML: buf.String()}, nil
}
