// Package templates renders the transactional email bodies.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// ConfirmationProps feeds the sign-up confirmation email.
type ConfirmationProps struct {
	SiteTitle  string
	ConfirmURL string
	Email      string
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!doctype html>
<html lang="vi">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>{{.SiteTitle}}</title>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.4; background-color: #f4f5f6; margin: 0; padding: 24px;">
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto; background: #ffffff; border: 1px solid #eaebed; border-radius: 16px;" width="100%">
      <tr>
        <td style="padding: 24px;">
          <h1 style="font-size: 22px; margin: 0 0 16px;">{{.SiteTitle}}</h1>
          <p style="margin: 0 0 16px;">Xin chào {{.Email}},</p>
          <p style="margin: 0 0 24px;">Vui lòng xác nhận địa chỉ email để kích hoạt tài khoản quản trị của bạn.</p>
          <p style="margin: 0 0 24px;">
            <a href="{{.ConfirmURL}}" style="background-color: #111827; border-radius: 8px; color: #ffffff; display: inline-block; font-weight: bold; padding: 12px 24px; text-decoration: none;">Xác nhận email</a>
          </p>
          <p style="color: #6b7280; font-size: 13px; margin: 0;">Nếu bạn không đăng ký, hãy bỏ qua email này.</p>
        </td>
      </tr>
    </table>
  </body>
</html>`))

// RenderConfirmation returns the HTML body of the confirmation email.
func RenderConfirmation(props ConfirmationProps) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, props); err != nil {
		return "", fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return buf.String(), nil
}
