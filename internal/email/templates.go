package email

import (
	"bytes"
	"html/template"
	texttpl "text/template"
)

// ActivationVars alimenta los templates del mail de activación.
type ActivationVars struct {
	Name         string
	Organisation string
	Link         string
}

const activationHTML = `<html><body>
<p>Hola {{.Name}},</p>
<p>Fuiste invitado a crear una cuenta para {{.Organisation}}.</p>
<p><a href="{{.Link}}">Activar cuenta</a></p>
<p>Si no esperabas esta invitación podés ignorar este mensaje.</p>
</body></html>`

const activationTXT = `Hola {{.Name}},

Fuiste invitado a crear una cuenta para {{.Organisation}}.

Activá tu cuenta en: {{.Link}}

Si no esperabas esta invitación podés ignorar este mensaje.`

var (
	activationHTMLTpl = template.Must(template.New("activation_html").Parse(activationHTML))
	activationTXTTpl  = texttpl.Must(texttpl.New("activation_txt").Parse(activationTXT))
)

// RenderActivation arma cuerpo HTML y texto del mail de activación.
func RenderActivation(vars ActivationVars) (htmlBody, textBody string, err error) {
	var h, t bytes.Buffer
	if err := activationHTMLTpl.Execute(&h, vars); err != nil {
		return "", "", err
	}
	if err := activationTXTTpl.Execute(&t, vars); err != nil {
		return "", "", err
	}
	return h.String(), t.String(), nil
}
