// internal/domain/models/entities.go
package models

import "time"

// Diocese is fixed reference data; see FixedDioceses.
type Diocese struct {
	ID             string    `bson:"_id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	NameCI         string    `bson:"name_ci" json:"-"`
	Slug           string    `bson:"slug" json:"slug"`
	IsMetropolitan bool      `bson:"is_metropolitan" json:"isMetropolitan"`
	Bishop         string    `bson:"bishop,omitempty" json:"bishop,omitempty"`
	Location       string    `bson:"location,omitempty" json:"location,omitempty"`
	Contact        string    `bson:"contact,omitempty" json:"contact,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// FixedDioceses returns the seven dioceses of the deployment.
// DAKAR is the metropolitan see.
func FixedDioceses() []Diocese {
	return []Diocese{
		{ID: "DAKAR", Name: "Archidiocèse de Dakar", Slug: "dakar", IsMetropolitan: true, Location: "Dakar"},
		{ID: "THIES", Name: "Diocèse de Thiès", Slug: "thies", Location: "Thiès"},
		{ID: "KAOLACK", Name: "Diocèse de Kaolack", Slug: "kaolack", Location: "Kaolack"},
		{ID: "ZIGUINCHOR", Name: "Diocèse de Ziguinchor", Slug: "ziguinchor", Location: "Ziguinchor"},
		{ID: "KOLDA", Name: "Diocèse de Kolda", Slug: "kolda", Location: "Kolda"},
		{ID: "TAMBACOUNDA", Name: "Diocèse de Tambacounda", Slug: "tambacounda", Location: "Tambacounda"},
		{ID: "SAINT_LOUIS", Name: "Diocèse de Saint-Louis", Slug: "saint-louis", Location: "Saint-Louis"},
	}
}

// Parish belongs to exactly one diocese.
type Parish struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	NameCI      string    `bson:"name_ci" json:"-"`
	DioceseID   string    `bson:"diocese_id" json:"dioceseId"`
	IsActive    bool      `bson:"is_active" json:"isActive"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Priest      string    `bson:"priest,omitempty" json:"priest,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// Church always has a diocese; ParishID is empty for diocese-level churches.
type Church struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	NameCI      string    `bson:"name_ci" json:"-"`
	ParishID    string    `bson:"parish_id,omitempty" json:"parishId,omitempty"`
	DioceseID   string    `bson:"diocese_id" json:"dioceseId"`
	IsActive    bool      `bson:"is_active" json:"isActive"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
