package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

const baseTemplate = `{{define "base"}}{{template "content" .}}

--
{{.AppName}} · {{.FrontendBaseURL}}{{end}}`

var (
	textTemplates = map[string]*texttmpl.Template{}
	htmlTemplates = map[string]*htmltmpl.Template{}
)

// RegisterEmailTemplate compiles the text and (optional) html bodies of a named email.
// Both bodies must define a "content" template; they are rendered inside "base".
func RegisterEmailTemplate(name, text, html string) {
	tt := texttmpl.Must(texttmpl.New(name).Option("missingkey=error").Parse(baseTemplate))
	textTemplates[name] = texttmpl.Must(tt.Parse(text))
	if html != "" {
		ht := htmltmpl.Must(htmltmpl.New(name).Option("missingkey=error").Parse(baseTemplate))
		htmlTemplates[name] = htmltmpl.Must(ht.Parse(html))
	}
}

func (m *EmailMessage) getContextData(conf *Config) ContextData {
	return ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) renderText(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	tmpl, ok := textTemplates[m.TemplateName]
	if !ok {
		return nil
	}
	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", m.getContextData(conf)); err != nil {
		return errors.Wrapf(err, "rendering %s text", m.TemplateName)
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML(conf *Config) error {
	tmpl, ok := htmlTemplates[m.TemplateName]
	if !ok {
		return nil
	}
	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", m.getContextData(conf)); err != nil {
		return errors.Wrapf(err, "rendering %s html", m.TemplateName)
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) Render(conf *Config) error {
	if err := m.renderText(conf); err != nil {
		return err
	}
	if m.TemplateName == "" {
		return nil
	}
	return m.renderHTML(conf)
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }
