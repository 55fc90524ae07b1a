// Package medias provides the entity records served by the French media
// ownership API: media outlets, persons and organisations.
//
// Field names follow the API's JSON wire format.
package medias

// OwnerType is the kind of entity declared as an owner.
type OwnerType string

const (
	OwnerPerson       OwnerType = "personne"
	OwnerOrganisation OwnerType = "organisation"
)

// Pagination describes one page of a collection.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Owner is one declared owner of a media or organisation.
type Owner struct {
	Name      string    `json:"nom"`
	Type      OwnerType `json:"type"`
	Qualifier string    `json:"qualificatif"` // e.g. "contrôle", "participation"
	Value     string    `json:"valeur"`       // share or descriptive term, display only
}

// OwnershipChain is a resolved path from a media up to an ultimate owner.
type OwnershipChain struct {
	Name       string   `json:"nom"`
	Path       []string `json:"chemin"`
	FinalValue string   `json:"valeurFinale"`
}

// Media is a media outlet.
type Media struct {
	Name        string           `json:"nom"`
	Type        string           `json:"type"`
	Periodicity string           `json:"periodicite"`
	Scale       string           `json:"echelle"`
	Price       string           `json:"prix"`
	Defunct     bool             `json:"disparu"`
	Owners      []Owner          `json:"proprietaires"`
	Chains      []OwnershipChain `json:"chaineProprietaires"`
}

// Rankings holds a person's appearances in the Challenges and Forbes
// rich lists. A nil rank means the person was not listed that year.
type Rankings struct {
	Challenges2024 *int `json:"challenges2024"`
	Forbes2024     bool `json:"forbes2024"`
	Challenges2023 *int `json:"challenges2023"`
	Forbes2023     bool `json:"forbes2023"`
	Challenges2022 *int `json:"challenges2022"`
	Forbes2022     bool `json:"forbes2022"`
	Challenges2021 *int `json:"challenges2021"`
	Forbes2021     bool `json:"forbes2021"`
}

// HeldMedia is a media held by a person, directly or through organisations.
type HeldMedia struct {
	Name      string `json:"nom"`
	Type      string `json:"type"`
	Qualifier string `json:"qualificatif"`
	Value     string `json:"valeur"`
	Via       string `json:"via,omitempty"`
}

// Holding is a stake in an organisation.
type Holding struct {
	Name      string `json:"nom"`
	Qualifier string `json:"qualificatif"`
	Value     string `json:"valeur"`
}

// Personne is a natural person owning media or organisations.
type Personne struct {
	Name          string      `json:"nom"`
	Rankings      Rankings    `json:"classements"`
	DirectMedia   []HeldMedia `json:"mediasDirects"`
	MediaViaOrgs  []HeldMedia `json:"mediasViaOrganisations"`
	Organisations []Holding   `json:"organisations"`
}

// OwnedMedia is a media held by an organisation.
type OwnedMedia struct {
	Name      string `json:"nom"`
	Type      string `json:"type"`
	Qualifier string `json:"qualificatif"`
	Value     string `json:"valeur"`
}

// Organisation is a company, group or foundation.
type Organisation struct {
	Name         string       `json:"nom"`
	Commentary   string       `json:"commentaire"`
	Owners       []Owner      `json:"proprietaires"`
	Subsidiaries []Holding    `json:"filiales"`
	Media        []OwnedMedia `json:"medias"`
}

// Dataset bundles one page of each collection, as consumed by the graph
// builder.
type Dataset struct {
	Medias        []Media
	Personnes     []Personne
	Organisations []Organisation
}

// Empty reports whether the dataset holds no entity at all.
func (d Dataset) Empty() bool {
	return len(d.Medias) == 0 && len(d.Personnes) == 0 && len(d.Organisations) == 0
}
