package tally

import "github.com/beevik/etree"

// Field is one child element of a master-record message. Fields are an
// ordered slice, not a map, so generated documents are deterministic.
type Field struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Report names accepted by the import request descriptor.
const (
	ReportMasters  = "All Masters"
	ReportVouchers = "Vouchers"
)

// Envelope builds the outer import-request document: ENVELOPE wrapping a
// HEADER that declares "Import Data" and a BODY whose REQUESTDATA carries one
// TALLYMESSAGE. It returns the document and the TALLYMESSAGE element for the
// caller to fill in.
func Envelope(report string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	env := doc.CreateElement("ENVELOPE")

	header := env.CreateElement("HEADER")
	header.CreateElement("TALLYREQUEST").SetText("Import Data")

	body := env.CreateElement("BODY")
	importData := body.CreateElement("IMPORTDATA")

	reqDesc := importData.CreateElement("REQUESTDESC")
	reqDesc.CreateElement("REPORTNAME").SetText(report)

	reqData := importData.CreateElement("REQUESTDATA")
	msg := reqData.CreateElement("TALLYMESSAGE")
	return doc, msg
}

// MasterEnvelope builds a complete master-data upsert document for one
// record: the given entity tag (UNIT, STOCKGROUP, LEDGER, STOCKITEM) with a
// Create action, its NAME element, and any extra fields in order.
func MasterEnvelope(tag, name string, fields []Field) string {
	doc, msg := Envelope(ReportMasters)

	entity := msg.CreateElement(tag)
	entity.CreateAttr("NAME", name)
	entity.CreateAttr("ACTION", "Create")
	entity.CreateElement("NAME").SetText(name)
	for _, f := range fields {
		if f.Value != "" {
			entity.CreateElement(f.Key).SetText(f.Value)
		}
	}

	xml, _ := doc.WriteToString()
	return xml
}
