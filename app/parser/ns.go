package parser

import (
	"encoding/xml"
	"strings"
)

type namespace int

const (
	nsNone namespace = iota
	nsOther
	nsAtom
	nsRSS1
	nsRDF
	nsDC
	nsDCTerms
	nsContent
	nsMedia
	nsITunes
)

var namespaceURIs = map[string]namespace{
	"http://www.w3.org/2005/Atom":                 nsAtom,
	"http://purl.org/atom/ns#":                    nsAtom,
	"http://purl.org/rss/1.0/":                    nsRSS1,
	"http://my.netscape.com/rdf/simple/0.9/":      nsRSS1,
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#": nsRDF,
	"http://purl.org/dc/elements/1.1/":            nsDC,
	"http://purl.org/dc/terms/":                   nsDCTerms,
	"http://purl.org/rss/1.0/modules/content/":    nsContent,
	"http://search.yahoo.com/mrss/":               nsMedia,
	"http://search.yahoo.com/mrss":                nsMedia,
	"http://www.itunes.com/dtds/podcast-1.0.dtd":  nsITunes,
}

// Prefixes recognized when a document uses them without declaring them;
// the tokenizer then leaves the bare prefix in Name.Space.
var namespacePrefixes = map[string]namespace{
	"atom":    nsAtom,
	"rdf":     nsRDF,
	"dc":      nsDC,
	"dcterms": nsDCTerms,
	"content": nsContent,
	"media":   nsMedia,
	"itunes":  nsITunes,
}

func nsOf(name xml.Name) namespace {
	if name.Space == "" {
		return nsNone
	}
	if ns, ok := namespaceURIs[name.Space]; ok {
		return ns
	}
	if ns, ok := namespacePrefixes[strings.ToLower(name.Space)]; ok {
		return ns
	}
	return nsOther
}

// isCore reports whether name belongs to the dialect's own vocabulary:
// either unqualified or in the dialect namespace.
func isCore(name xml.Name, dialect namespace) bool {
	ns := nsOf(name)
	return ns == nsNone || ns == dialect
}
