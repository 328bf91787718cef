package model

import (
	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Detection is the result of one detector run on one blob.
type Detection struct {
	Path       string
	Components []cdx.Component
}
