package xml

import "strings"

// Version identifies a DMN specification release.
type Version string

const (
	DMN11 Version = "1.1"
	DMN12 Version = "1.2"
	DMN13 Version = "1.3"
)

// Model namespaces per DMN release. The parser matches on the date token so
// vendor documents with a trailing dmn.xsd or MODEL/ segment all resolve.
const (
	namespaceDMN11 = "http://www.omg.org/spec/DMN/20151101/dmn.xsd"
	namespaceDMN12 = "http://www.omg.org/spec/DMN/20180521/MODEL/"
	namespaceDMN13 = "https://www.omg.org/spec/DMN/20191111/MODEL/"

	namespaceDMNDI12 = "http://www.omg.org/spec/DMN/20180521/DMNDI/"
	namespaceDMNDI13 = "https://www.omg.org/spec/DMN/20191111/DMNDI/"
	namespaceDC      = "http://www.omg.org/spec/DMN/20180521/DC/"
	namespaceDI      = "http://www.omg.org/spec/DMN/20180521/DI/"
)

// ModelNamespace returns the model namespace URI for a DMN version.
func (v Version) ModelNamespace() string {
	switch v {
	case DMN11:
		return namespaceDMN11
	case DMN12:
		return namespaceDMN12
	default:
		return namespaceDMN13
	}
}

// Valid reports whether v names a supported DMN release.
func (v Version) Valid() bool {
	switch v {
	case DMN11, DMN12, DMN13:
		return true
	}
	return false
}

// detectVersion maps a namespace URI to the DMN release it belongs to. The
// boolean is false for unknown namespaces; callers assume 1.3 and warn.
func detectVersion(namespace string) (Version, bool) {
	switch {
	case strings.Contains(namespace, "20151101"):
		return DMN11, true
	case strings.Contains(namespace, "20180521"):
		return DMN12, true
	case strings.Contains(namespace, "20191111"):
		return DMN13, true
	}
	return DMN13, false
}
