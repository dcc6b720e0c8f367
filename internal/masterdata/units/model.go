package units

// Unit is a unit-of-measure code.
type Unit struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Creator string `json:"creator"`
	Deleted bool   `json:"deleted"`
}

// Form field names.
const (
	FieldCode    = "code"
	FieldName    = "name"
	FieldCreator = "creator"
)

func values(u Unit) map[string]string {
	return map[string]string{
		FieldCode:    u.Code,
		FieldName:    u.Name,
		FieldCreator: u.Creator,
	}
}
