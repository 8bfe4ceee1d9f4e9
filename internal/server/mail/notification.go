// Package mail builds and delivers the one-time share notification.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/namaniisc/CloudDrop/internal/server/models"
)

const (
	subject = "CloudDrop File Sharing"

	// expiresDisplay is informational only; nothing actually expires links.
	expiresDisplay = "24 hours"
)

// Notification is the payload handed to the mail transport when a transfer
// is shared.
type Notification struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Transport delivers notifications. Implementations report failures
// synchronously; the dispatcher never retries on its own.
type Transport interface {
	Send(ctx context.Context, n *Notification) error
}

var shareTemplate = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #333;">
    <h2>CloudDrop</h2>
    <p><strong>{{.From}}</strong> shared a file with you.</p>
    <p>Size: {{.Size}}<br>Link valid for {{.Expires}}.</p>
    <p><a href="{{.DownloadLink}}">Download</a></p>
    <p style="color:#888;">{{.DownloadLink}}</p>
  </body>
</html>
`))

type shareTemplateData struct {
	From         string
	DownloadLink string
	Size         string
	Expires      string
}

// accessLink builds the public link for a transfer from the configured base
// URL.
func accessLink(baseURL, id string) string {
	return fmt.Sprintf("%s/files/%s", strings.TrimRight(baseURL, "/"), id)
}

// displaySize renders a byte count as whole kilobytes with integer division
// by 1000, e.g. 2048000 -> "2048KB". No MB/GB scaling.
func displaySize(size int64) string {
	return fmt.Sprintf("%dKB", size/1000)
}

// BuildShareNotification renders the notification for a freshly shared
// transfer. The transfer must already carry sender and receiver.
func BuildShareNotification(baseURL string, t *models.Transfer) (*Notification, error) {
	data := shareTemplateData{
		From:         t.Sender,
		DownloadLink: accessLink(baseURL, t.ID),
		Size:         displaySize(t.Size),
		Expires:      expiresDisplay,
	}

	var buf bytes.Buffer
	if err := shareTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	return &Notification{
		From:     t.Sender,
		To:       t.Receiver,
		Subject:  subject,
		TextBody: fmt.Sprintf("%s shared a file with you.", t.Sender),
		HTMLBody: buf.String(),
	}, nil
}
