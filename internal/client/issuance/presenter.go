package issuance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
)

const universalLinkBase = "https://irma.app/-/session#"

// UniversalLink returns the link that opens ptr in the Yivi app when
// followed on a phone. It is also what the QR code encodes.
func UniversalLink(ptr client.SessionPointer) (string, error) {
	b, err := json.Marshal(ptr)
	if err != nil {
		return "", err
	}
	return universalLinkBase + url.PathEscape(string(b)), nil
}

var presenterTexts = map[string]map[string]string{
	"en": {
		"scan":                    "Open this link on your phone, or scan it as a QR code with the Yivi app:",
		string(StatusPairing):     "Enter the pairing code shown in your Yivi app.",
		string(StatusConnected):   "Yivi app connected. Waiting for you to disclose your attributes...",
		string(StatusDone):        "Attributes disclosed.",
		string(StatusCancelled):   "Session cancelled in the Yivi app.",
		string(StatusTimeout):     "Session timed out.",
		string(StatusInitialized): "Waiting for the Yivi app...",
	},
	"nl": {
		"scan":                    "Open deze link op je telefoon, of scan hem als QR-code met de Yivi-app:",
		string(StatusPairing):     "Voer de koppelcode in die je Yivi-app toont.",
		string(StatusConnected):   "Yivi-app verbonden. Wachten tot je je gegevens deelt...",
		string(StatusDone):        "Gegevens gedeeld.",
		string(StatusCancelled):   "Sessie geannuleerd in de Yivi-app.",
		string(StatusTimeout):     "Sessie verlopen.",
		string(StatusInitialized): "Wachten op de Yivi-app...",
	},
}

// TextPresenter prints the session link and progress messages to a
// terminal.
type TextPresenter struct {
	w    io.Writer
	lang string
}

func NewTextPresenter(w io.Writer) *TextPresenter {
	return &TextPresenter{w: w, lang: "en"}
}

func (p *TextPresenter) text(key string) string {
	if t, ok := presenterTexts[p.lang][key]; ok {
		return t
	}
	return presenterTexts["en"][key]
}

func (p *TextPresenter) Present(_ context.Context, ptr client.SessionPointer, lang string) error {
	if _, ok := presenterTexts[lang]; ok {
		p.lang = lang
	}
	link, err := UniversalLink(ptr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s\n\n  %s\n\n", p.text("scan"), link)
	return err
}

func (p *TextPresenter) Progress(status Status) {
	if msg := p.text(string(status)); msg != "" {
		fmt.Fprintln(p.w, msg)
	}
}
