package parser

import (
	"mime"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

// atomText reads an Atom text construct, honoring its type attribute.
// It returns nil for an empty element.
func atomText(el *xmlsrc.Element) (*model.Text, error) {
	textType, err := textTypeOf(el.Attr("type"))
	if err != nil {
		return nil, err
	}

	var value string
	if textType == model.TextXHTML {
		value, err = el.InnerXML()
	} else {
		value, err = el.Text()
	}
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}

	return &model.Text{ContentType: textType, Value: value}, nil
}

// textTypeOf maps an Atom type attribute to a text type. Some producers
// put a MIME type there instead of text/html/xhtml; those are accepted too.
func textTypeOf(attr string) (model.TextType, error) {
	switch strings.ToLower(strings.TrimSpace(attr)) {
	case "", "text", model.MimeTextPlain:
		return model.TextPlain, nil
	case "html", model.MimeTextHTML:
		return model.TextHTML, nil
	case "xhtml", model.MimeXHTML:
		return model.TextXHTML, nil
	default:
		return "", errUnknownMimeType(attr)
	}
}

// contentMimeType maps an Atom content type attribute to a MIME type.
func contentMimeType(attr string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(attr)) {
	case "", "text":
		return model.MimeTextPlain, nil
	case "html":
		return model.MimeTextHTML, nil
	case "xhtml":
		return model.MimeXHTML, nil
	}

	mediaType, _, err := mime.ParseMediaType(attr)
	if err != nil || !strings.Contains(mediaType, "/") {
		return "", errUnknownMimeType(attr)
	}
	return mediaType, nil
}

// htmlText reads an RSS text field. RSS carries no type information and
// producers conventionally embed markup, so the value is classified HTML.
func htmlText(el *xmlsrc.Element) (*model.Text, error) {
	return typedText(el, model.TextHTML)
}

func plainText(el *xmlsrc.Element) (*model.Text, error) {
	return typedText(el, model.TextPlain)
}

func typedText(el *xmlsrc.Element, textType model.TextType) (*model.Text, error) {
	value, err := el.Text()
	if err != nil || value == "" {
		return nil, err
	}
	return &model.Text{ContentType: textType, Value: value}, nil
}

// requiredText reads the text of an element whose value must be present.
func requiredText(el *xmlsrc.Element, field string) (string, error) {
	value, err := el.Text()
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", errMissingContent(field)
	}
	return value, nil
}

// parsePerson reads an RSS person string. RSS uses "email (Name)"; plain
// names and "Name <email>" forms are also seen.
func parsePerson(value string) (model.Person, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.Person{}, false
	}

	if open := strings.Index(value, "("); open > 0 && strings.HasSuffix(value, ")") {
		email := strings.TrimSpace(value[:open])
		name := strings.TrimSpace(value[open+1 : len(value)-1])
		if strings.Contains(email, "@") {
			return model.Person{Name: name, Email: email}, true
		}
	}

	if addr, err := mail.ParseAddress(value); err == nil {
		return model.Person{Name: addr.Name, Email: addr.Address}, true
	}

	if strings.Contains(value, "@") && !strings.Contains(value, " ") {
		return model.Person{Email: value}, true
	}

	return model.Person{Name: value}, true
}

// normalizeLanguage returns the canonical BCP 47 form of a language tag, or
// the trimmed input when it is not a valid tag.
func normalizeLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return value
	}
	return tag.String()
}

func parseUint64(value string) *uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseUint32(value string) *uint32 {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return nil
	}
	v := uint32(n)
	return &v
}

// parseDuration reads "SS", "MM:SS" or "HH:MM:SS" as used by iTunes and
// Media RSS. Fractional seconds are accepted in the last component.
func parseDuration(value string) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return nil
	}

	var total float64
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return nil
		}
		total = total*60 + n
	}

	d := time.Duration(total * float64(time.Second))
	return &d
}

// splitKeywords splits a comma separated keyword list, dropping blanks.
func splitKeywords(value string) []string {
	var out []string
	for _, kw := range strings.Split(value, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
