package enums

// ContactMode decides how a listing's contact fields are rendered for a viewer.
type ContactMode string

const (
	ContactVisible ContactMode = "visible"
	ContactMasked  ContactMode = "masked"
	ContactHidden  ContactMode = "hidden"
)
