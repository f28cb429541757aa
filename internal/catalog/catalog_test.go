package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadStatic(t *testing.T) *Static {
	t.Helper()
	s, err := LoadStatic()
	require.NoError(t, err)
	return s
}

func TestStatic_MakesAndModels(t *testing.T) {
	s := loadStatic(t)
	ctx := context.Background()

	makes, err := s.Makes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BMW", "Chevrolet", "Ford", "Honda", "Jeep", "Mercedes-Benz", "Nissan", "Subaru", "Tesla", "Toyota"}, makes)

	hondas, err := s.Models(ctx, "Honda")
	require.NoError(t, err)
	assert.Equal(t, []string{"Accord", "CR-V", "Civic", "Odyssey", "Pilot"}, hondas)

	none, err := s.Models(ctx, "Yugo")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatic_Vehicle(t *testing.T) {
	s := loadStatic(t)

	v, ok, err := s.Vehicle(context.Background(), "Honda", "Civic")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"LX", "Sport", "EX", "EX-L", "Touring", "Si", "Type R"}, v.Trims)
	assert.Equal(t, []string{"Sedan", "Coupe", "Hatchback"}, v.BodyTypes)
	require.Len(t, v.Years, 36)
	assert.Equal(t, 2025, v.Years[0])
	assert.Equal(t, 1990, v.Years[35])

	v, ok, err = s.Vehicle(context.Background(), "tesla", "model 3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Tesla", v.Make)
	assert.Equal(t, "Model 3", v.Model)

	_, ok, err = s.Vehicle(context.Background(), "Honda", "Camry")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatic_Search(t *testing.T) {
	s := loadStatic(t)
	ctx := context.Background()

	got, err := s.Search(ctx, "civ")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Make: "Honda", Model: "Civic", Label: "Honda Civic"}}, got)

	// a make hit brings every model of that make
	got, err = s.Search(ctx, "toyo")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = s.Search(ctx, "ca")
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Make: "Toyota", Model: "Camry", Label: "Toyota Camry"},
		{Make: "Ford", Model: "Escape", Label: "Ford Escape"},
	}, got)

	got, err = s.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_CapsResults(t *testing.T) {
	var entries []MakeEntry
	for i := 0; i < 5; i++ {
		mk := MakeEntry{Name: fmt.Sprintf("Make%d", i)}
		for j := 0; j < 6; j++ {
			mk.Models = append(mk.Models, ModelEntry{Name: fmt.Sprintf("Model%d", j)})
		}
		entries = append(entries, mk)
	}
	assert.Len(t, search(entries, "make"), searchLimit)
}

func TestStatic_Attributes(t *testing.T) {
	s := loadStatic(t)
	ctx := context.Background()

	bodies, err := s.Attribute(ctx, BodyTypes)
	require.NoError(t, err)
	assert.Equal(t, []string{"Convertible", "Coupe", "Hatchback", "Minivan", "Pickup Truck", "SUV", "Sedan", "Wagon"}, bodies)

	fuels, err := s.Attribute(ctx, FuelTypes)
	require.NoError(t, err)
	assert.Equal(t, []string{"Diesel", "Electric", "Gasoline", "Hybrid"}, fuels)

	gears, err := s.Attribute(ctx, Transmissions)
	require.NoError(t, err)
	assert.Equal(t, []string{"Automatic", "CVT", "Manual", "Single-Speed Automatic"}, gears)
}

func TestParse_RejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"duplicate make": "makes:\n  - name: A\n  - name: a\n",
		"bad years":      "makes:\n  - name: A\n    models:\n      - name: X\n        years: {from: 2020, to: 2010}\n",
		"no model name":  "makes:\n  - name: A\n    models:\n      - years: {from: 2020, to: 2021}\n",
		"not yaml":       "makes: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDatabase_MatchesStaticAfterSeed(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f, err := Embedded()
	require.NoError(t, err)

	res, err := Seed(ctx, db, f)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Makes: 10, Models: 32}, res)

	// seeding again does not duplicate rows
	_, err = Seed(ctx, db, f)
	require.NoError(t, err)
	var makes, vehicles int64
	require.NoError(t, db.Model(&models.Make{}).Count(&makes).Error)
	require.NoError(t, db.Model(&models.VehicleModel{}).Count(&vehicles).Error)
	assert.EqualValues(t, 10, makes)
	assert.EqualValues(t, 32, vehicles)

	static := NewStatic(f)
	dbp := NewDatabase(db)

	wantMakes, _ := static.Makes(ctx)
	gotMakes, err := dbp.Makes(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantMakes, gotMakes)

	wantModels, _ := static.Models(ctx, "Honda")
	gotModels, err := dbp.Models(ctx, "honda")
	require.NoError(t, err)
	assert.Equal(t, wantModels, gotModels)

	want, _, _ := static.Vehicle(ctx, "Honda", "Civic")
	got, ok, err := dbp.Vehicle(ctx, "Honda", "Civic")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Years, got.Years)
	assert.ElementsMatch(t, want.Trims, got.Trims)
	assert.ElementsMatch(t, want.BodyTypes, got.BodyTypes)
	assert.ElementsMatch(t, want.Transmissions, got.Transmissions)
	assert.ElementsMatch(t, want.FuelTypes, got.FuelTypes)

	_, ok, err = dbp.Vehicle(ctx, "Honda", "Camry")
	require.NoError(t, err)
	assert.False(t, ok)

	wantSearch, _ := static.Search(ctx, "es")
	gotSearch, err := dbp.Search(ctx, "es")
	require.NoError(t, err)
	assert.Equal(t, wantSearch, gotSearch)

	for _, attr := range []Attribute{BodyTypes, Transmissions, FuelTypes} {
		want, _ := static.Attribute(ctx, attr)
		got, err := dbp.Attribute(ctx, attr)
		require.NoError(t, err)
		assert.Equal(t, want, got, attr)
	}
}

func TestHandler(t *testing.T) {
	h := NewHandler(loadStatic(t))

	get := func(fn http.HandlerFunc, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		fn(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	w := get(h.Trims, "/api/cars/trims?make=Honda&model=Civic")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"make":"Honda","model":"Civic","trims":["LX","Sport","EX","EX-L","Touring","Si","Type R"]}`, w.Body.String())

	w = get(h.Trims, "/api/cars/trims?make=Yugo&model=GV")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"make":"Yugo","model":"GV","trims":[]}`, w.Body.String())

	w = get(h.Models, "/api/cars/models?make=Yugo")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"make":"Yugo","models":[]}`, w.Body.String())

	w = get(h.Years, "/api/cars/years?make=Tesla&model=Model%20Y")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"make":"Tesla","model":"Model Y","years":[2025,2024,2023,2022,2021,2020]}`, w.Body.String())

	w = get(h.Details, "/api/cars/details?make=Yugo&model=GV")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Vehicle not found"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(h.Details, "/api/cars/details?make=Honda").Code)
	assert.Equal(t, http.StatusBadRequest, get(h.Search, "/api/cars/search?query=c").Code)

	w = get(h.Search, "/api/cars/search?query=model")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"label":"Tesla Model S"`)

	w = get(h.AllFuelTypes, "/api/cars/all-fuel-types")
	assert.JSONEq(t, `{"fuel_types":["Diesel","Electric","Gasoline","Hybrid"]}`, w.Body.String())

	w = get(h.Makes, "/api/cars/makes")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Mercedes-Benz"`)
}
