package medias

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mediasPage = `{
  "data": [
    {
      "nom": "Canal X",
      "type": "Télévision",
      "periodicite": "Quotidien",
      "echelle": "National",
      "prix": "Gratuit",
      "disparu": false,
      "proprietaires": [
        {"nom": "Alice", "type": "personne", "qualificatif": "contrôle", "valeur": "60"},
        {"nom": "Org Y", "type": "organisation", "qualificatif": "contrôle", "valeur": "100"}
      ],
      "chaineProprietaires": [
        {"nom": "Bob", "chemin": ["Bob", "Org Y", "Canal X"], "valeurFinale": "40"}
      ]
    }
  ],
  "pagination": {"page": 1, "limit": 50, "total": 1, "pages": 1}
}`

func TestParsePageMedias(t *testing.T) {
	p, err := ParsePage[Media]([]byte(mediasPage))
	require.NoError(t, err)
	require.Len(t, p.Data, 1)

	m := p.Data[0]
	assert.Equal(t, "Canal X", m.Name)
	assert.Equal(t, "Télévision", m.Type)
	require.Len(t, m.Owners, 2)
	assert.Equal(t, OwnerPerson, m.Owners[0].Type)
	assert.Equal(t, OwnerOrganisation, m.Owners[1].Type)
	assert.Equal(t, "100", m.Owners[1].Value)
	assert.Equal(t, []string{"Bob", "Org Y", "Canal X"}, m.Chains[0].Path)
	assert.Equal(t, Pagination{Page: 1, Limit: 50, Total: 1, Pages: 1}, p.Pagination)
}

func TestParsePagePersonRankings(t *testing.T) {
	doc := `{"data":[{"nom":"Alice","classements":{"challenges2024":12,"forbes2024":true,"challenges2023":null},
	"mediasDirects":[{"nom":"Canal X","type":"Télévision","qualificatif":"contrôle","valeur":"60"}],
	"mediasViaOrganisations":[{"nom":"Radio Z","type":"Radio","qualificatif":"participation","valeur":"10","via":"Org Y"}],
	"organisations":[]}]}`

	p, err := ParsePage[Personne]([]byte(doc))
	require.NoError(t, err)
	require.Len(t, p.Data, 1)

	r := p.Data[0].Rankings
	require.NotNil(t, r.Challenges2024)
	assert.Equal(t, 12, *r.Challenges2024)
	assert.True(t, r.Forbes2024)
	assert.Nil(t, r.Challenges2023)
	assert.Equal(t, "Org Y", p.Data[0].MediaViaOrgs[0].Via)
}

func TestParsePageMissingData(t *testing.T) {
	p, err := ParsePage[Organisation]([]byte(`{"pagination":{"page":1,"limit":50,"total":0,"pages":0}}`))
	require.NoError(t, err)
	assert.NotNil(t, p.Data)
	assert.Empty(t, p.Data)
}

func TestParsePageInvalid(t *testing.T) {
	_, err := ParsePage[Media]([]byte(`{"data": [`))
	assert.Error(t, err)
}

func TestNewPage(t *testing.T) {
	p := NewPage([]Organisation{{Name: "Org Y"}, {Name: "Org Z"}})
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 2, Pages: 1}, p.Pagination)

	empty := NewPage[Media](nil)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.Pagination.Pages)
}

func sampleDataset() Dataset {
	return Dataset{
		Medias: []Media{{
			Name:   "Canal X",
			Owners: []Owner{{Name: "Alice", Type: OwnerPerson, Value: "60"}},
		}},
		Personnes: []Personne{{Name: "Alice"}},
		Organisations: []Organisation{{
			Name:  "Org Y",
			Media: []OwnedMedia{{Name: "Canal X", Value: "100"}},
		}},
	}
}

func TestDirRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	ds := sampleDataset()

	require.NoError(t, WriteDir(dir, ds))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ds.Medias[0].Name, got.Medias[0].Name)
	assert.Equal(t, ds.Medias[0].Owners, got.Medias[0].Owners)
	assert.Equal(t, "Alice", got.Personnes[0].Name)
	assert.Equal(t, ds.Organisations[0].Media, got.Organisations[0].Media)
}

func TestReadDirMissingFiles(t *testing.T) {
	ds, err := ReadDir(t.TempDir())
	require.NoError(t, err)
	assert.True(t, ds.Empty())
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.reseau")
	ds := sampleDataset()

	require.NoError(t, WriteArchiveFile(path, ds))

	got, err := Load(path)
	require.NoError(t, err)
	assert.False(t, got.Empty())
	assert.Len(t, got.Medias, 1)
	assert.Len(t, got.Personnes, 1)
	assert.Len(t, got.Organisations, 1)
}

func TestReadArchiveBytesInvalid(t *testing.T) {
	_, err := ReadArchiveBytes([]byte("not a zip"))
	assert.Error(t, err)
}
