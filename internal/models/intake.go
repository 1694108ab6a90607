// Package models defines the data structures for the scheme recommendation engine.
package models

// ProfileInput is the raw intake-form submission before normalization.
// Occupation, category and gender arrive as free-ish strings from the
// form; ToProfile maps them onto the typed enums. Type coercion and
// required-field validation happen at the transport boundary, not in the
// matching engine.
type ProfileInput struct {
	Age           int    `json:"age"`
	AnnualIncome  *int   `json:"annual_income,omitempty"`
	Occupation    string `json:"occupation"`
	Category      string `json:"category"`
	State         string `json:"state"`
	Gender        string `json:"gender"`
	Education     string `json:"education,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	IsBPL         bool   `json:"is_bpl"`
	IsFarmer      bool   `json:"is_farmer"`
	IsStudent     bool   `json:"is_student"`
	Disability    bool   `json:"disability"`
	IsMinority    bool   `json:"is_minority"`
	Language      string `json:"language,omitempty"`
}

// ToProfile normalizes the intake submission into a typed Profile.
func (in *ProfileInput) ToProfile() *Profile {
	return &Profile{
		Age:           in.Age,
		AnnualIncome:  in.AnnualIncome,
		Occupation:    NormalizeOccupation(in.Occupation),
		Category:      NormalizeCategory(in.Category),
		State:         ResolveState(in.State),
		Gender:        NormalizeGender(in.Gender),
		Education:     Education(in.Education),
		MaritalStatus: MaritalStatus(in.MaritalStatus),
		IsBPL:         in.IsBPL,
		IsFarmer:      in.IsFarmer,
		IsStudent:     in.IsStudent,
		Disability:    in.Disability,
		IsMinority:    in.IsMinority,
		Language:      in.Language,
	}
}
