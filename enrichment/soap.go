package enrichment

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	soapEnvNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNS      = "http://www.w3.org/2001/XMLSchema-instance"
	davidOpsNS = "http://service.session.sample"
)

// xmlNode is a generic element tree used to read SOAP replies without a WSDL binding.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func (n xmlNode) isNil() bool {
	for _, a := range n.Attrs {
		if a.Name.Local == "nil" && (a.Name.Space == xsiNS || a.Name.Space == "xsi") {
			return strings.EqualFold(strings.TrimSpace(a.Value), "true")
		}
	}
	return false
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type soapEnvelope struct {
	Body struct {
		Fault   *soapFault `xml:"Fault"`
		Content []xmlNode  `xml:",any"`
	} `xml:"Body"`
}

// SOAPFault is returned when the service answers with a soap:Fault.
type SOAPFault struct {
	Code    string
	Message string
}

func (f *SOAPFault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.Message)
}

// encodeSOAPRequest builds a document/literal request with positional args0..argsN.
func encodeSOAPRequest(operation string, args ...string) string {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="` + soapEnvNS + `" xmlns:ns="` + davidOpsNS + `">`)
	b.WriteString(`<soapenv:Body><ns:` + operation + `>`)
	for i, arg := range args {
		tag := fmt.Sprintf("ns:args%d", i)
		b.WriteString("<" + tag + ">")
		_ = xml.EscapeText(&b, []byte(arg))
		b.WriteString("</" + tag + ">")
	}
	b.WriteString(`</ns:` + operation + `></soapenv:Body></soapenv:Envelope>`)
	return b.String()
}

// decodeSOAPReturns returns the <return> elements of the response wrapper.
func decodeSOAPReturns(data []byte) ([]xmlNode, error) {
	var env soapEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode soap envelope: %w", err)
	}
	if f := env.Body.Fault; f != nil {
		return nil, &SOAPFault{Code: strings.TrimSpace(f.Code), Message: strings.TrimSpace(f.String)}
	}
	if len(env.Body.Content) == 0 {
		return nil, fmt.Errorf("decode soap envelope: empty body")
	}
	var out []xmlNode
	for _, child := range env.Body.Content[0].Children {
		if child.XMLName.Local == "return" {
			out = append(out, child)
		}
	}
	return out, nil
}

// recordFromNode flattens a complex <return> element into a RawRecord.
func recordFromNode(n xmlNode) RawRecord {
	rec := make(RawRecord, len(n.Children))
	for _, field := range n.Children {
		if field.isNil() {
			rec[field.XMLName.Local] = nil
			continue
		}
		rec[field.XMLName.Local] = strings.TrimSpace(field.Content)
	}
	return rec
}
