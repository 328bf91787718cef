// Package cdxprops holds the CycloneDX property names certhound emits and
// small helpers for building components.
package cdxprops

import (
	"path/filepath"
	"strconv"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Exported so tests and other packages can reference the same strings.
const (
	CerthoundComponentMaterialFormat = "certhound:component:material:format"
	CerthoundComponentMaterialBytes  = "certhound:component:material:bytes"
)

// MaterialComponent builds the component recorded for one classified blob.
// Only the path and the detected encoding are recorded; certhound never
// parses the material itself.
func MaterialComponent(path, format string, size int) cdx.Component {
	absPath, _ := filepath.Abs(path)

	c := cdx.Component{
		Type: cdx.ComponentTypeCryptographicAsset,
		Name: filepath.Base(path),
		CryptoProperties: &cdx.CryptoProperties{
			AssetType: cdx.CryptoAssetTypeRelatedCryptoMaterial,
			RelatedCryptoMaterialProperties: &cdx.RelatedCryptoMaterialProperties{
				Format: format,
			},
		},
	}

	SetComponentProp(&c, CerthoundComponentMaterialFormat, format)
	SetComponentProp(&c, CerthoundComponentMaterialBytes, strconv.Itoa(size))
	AddEvidenceLocation(&c, absPath)
	return c
}

// SetComponentProp sets (or upserts) a CycloneDX component property.
func SetComponentProp(c *cdx.Component, name, value string) {
	if value == "" {
		return
	}
	if c.Properties == nil {
		c.Properties = &[]cdx.Property{{Name: name, Value: value}}
		return
	}
	props := *c.Properties
	for i := range props {
		if props[i].Name == name {
			props[i].Value = value
			*c.Properties = props
			return
		}
	}
	props = append(props, cdx.Property{Name: name, Value: value})
	*c.Properties = props
}

// AddEvidenceLocation appends an evidence.occurrence location if non-empty.
func AddEvidenceLocation(c *cdx.Component, loc string) {
	if loc == "" {
		return
	}
	occ := cdx.EvidenceOccurrence{Location: loc}
	if c.Evidence == nil {
		c.Evidence = &cdx.Evidence{Occurrences: &[]cdx.EvidenceOccurrence{occ}}
		return
	}
	if c.Evidence.Occurrences == nil {
		c.Evidence.Occurrences = &[]cdx.EvidenceOccurrence{occ}
		return
	}
	occs := append(*c.Evidence.Occurrences, occ)
	c.Evidence.Occurrences = &occs
}
