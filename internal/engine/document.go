package engine

import (
	"github.com/roach88/fprecon/internal/ir"
)

// Document is the result document written for a batch.
//
// V1, V1NoUA and V2 hold the calculated hash of the last record of that
// variant, or null when the batch had none.
type Document struct {
	V1      *string     `json:"v1"`
	V1NoUA  *string     `json:"v1SansUA"`
	V2      *string     `json:"v2"`
	Results []ir.Result `json:"results"`
}

// Document builds the result document for the batch.
func (b *Batch) Document() Document {
	doc := Document{Results: make([]ir.Result, 0, len(b.Results))}
	for _, r := range b.Results {
		calculated := r.Calculated
		switch r.Version {
		case ir.VariantV1:
			doc.V1 = &calculated
		case ir.VariantV1NoUA:
			doc.V1NoUA = &calculated
		case ir.VariantV2:
			doc.V2 = &calculated
		}
		doc.Results = append(doc.Results, r)
	}
	return doc
}
