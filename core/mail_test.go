package core

import (
	"net/mail"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestEmailMessage_Render(t *testing.T) {
	conf := &Config{AppName: "Darasa", FrontendBaseURL: "https://darasa.example.com", TestMode: true}
	ParseEmailTemplates(conf, nopLogger{})

	msg := &EmailMessage{
		To:           []mail.Address{{Name: "Amani", Address: "amani@example.com"}},
		Subject:      "Enrolled",
		TemplateName: "enrollment_confirmed",
		TemplateData: map[string]interface{}{"Name": "Amani", "CourseTitle": "Go & You", "CourseSlug": "go-and-you"},
	}
	require.NoError(t, msg.Render(conf))
	assert.True(t, msg.HasRecipients())
	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Hi Amani,")
	assert.Contains(t, msg.TextContent, `"Go & You"`)
	assert.Contains(t, msg.TextContent, "https://darasa.example.com/learn/go-and-you")
	assert.Contains(t, msg.HTMLContent, "Go &amp; You")
	assert.Contains(t, msg.HTMLContent, "The Darasa team")

	missing := &EmailMessage{
		TemplateName: "course_completed",
		TemplateData: map[string]interface{}{"Name": "Amani"},
	}
	assert.Error(t, missing.Render(conf), "strict templates fail on missing keys")

	plain := &EmailMessage{BodyStr: "hello"}
	require.NoError(t, plain.Render(conf))
	assert.Equal(t, "hello", plain.TextContent)
	assert.Empty(t, plain.HTMLContent)
	assert.False(t, plain.HasRecipients())
}

func TestParseTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"tmpl/_base.txt":     {Data: []byte(`[{{template "content" .}}]`)},
		"tmpl/_base.gohtml":  {Data: []byte(`<p>{{template "content" .}}</p>`)},
		"tmpl/hello.txt":     {Data: []byte(`{{define "content"}}hi {{.Data}}{{end}}`)},
		"tmpl/hello.gohtml":  {Data: []byte(`{{define "content"}}hi {{.Data}}{{end}}`)},
		"tmpl/only_text.txt": {Data: []byte(`{{define "content"}}text{{end}}`)},
		"tmpl/notes.md":      {Data: []byte(`ignored`)},
	}
	cache, err := parseTemplates(fsys, "tmpl", false)
	require.NoError(t, err)
	assert.Len(t, cache, 2)
	assert.Len(t, cache["hello"], 2)
	assert.Len(t, cache["only_text"], 1)

	fsys["tmpl/broken.txt"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{end`)}
	_, err = parseTemplates(fsys, "tmpl", false)
	assert.Error(t, err)
}
