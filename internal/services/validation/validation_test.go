package validation

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	require.NotEmpty(t, ValidateName("A"))
	require.Empty(t, ValidateName("Buddy123"))
	require.NotEmpty(t, ValidateName("Buddy!"))
	require.NotEmpty(t, ValidateName(strings.Repeat("a", 51)))
	require.Empty(t, ValidateName(strings.Repeat("a", 50)))
	require.Empty(t, ValidateName("Mèo Đốm"))
	require.NotEmpty(t, ValidateName("   "))

	require.Empty(t, ValidateGroupName(strings.Repeat("b", 100)))
	require.NotEmpty(t, ValidateGroupName(strings.Repeat("b", 101)))
}

func TestValidateWeight(t *testing.T) {
	require.Empty(t, ValidateWeight("50.5"))
	require.Empty(t, ValidateWeight("100"))
	require.Empty(t, ValidateWeight("0.01"))
	require.NotEmpty(t, ValidateWeight("50.555"))
	require.NotEmpty(t, ValidateWeight("0"))
	require.NotEmpty(t, ValidateWeight("100.01"))
	require.NotEmpty(t, ValidateWeight("abc"))
	require.NotEmpty(t, ValidateWeight("-3"))
	require.NotEmpty(t, ValidateWeight(""))
}

func TestValidateAge(t *testing.T) {
	require.Empty(t, ValidateAge("0"))
	require.Empty(t, ValidateAge("30"))
	require.NotEmpty(t, ValidateAge("31"))
	require.NotEmpty(t, ValidateAge("-1"))
	require.NotEmpty(t, ValidateAge("2.5"))
}

func TestValidateArrivalDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	require.Empty(t, ValidateArrivalDate("", now))
	require.Empty(t, ValidateArrivalDate("2025-06-15", now))
	require.Empty(t, ValidateArrivalDate("2005-06-15", now))
	require.NotEmpty(t, ValidateArrivalDate("2025-06-16", now))
	require.NotEmpty(t, ValidateArrivalDate("2005-06-14", now))
	require.NotEmpty(t, ValidateArrivalDate("15/06/2025", now))
}

func TestValidatePhone(t *testing.T) {
	require.Empty(t, ValidatePhone("0912345678"))
	require.Empty(t, ValidatePhone("+84912345678"))
	require.NotEmpty(t, ValidatePhone("12345"))
	require.NotEmpty(t, ValidatePhone("0912-345-678"))
}

func testRefs() Refs {
	breed := "br-persian"
	return Refs{
		Species: []models.Species{{ID: "cat"}, {ID: "dog"}},
		Breeds: []models.Breed{
			{ID: "br-persian", SpeciesID: "cat"},
			{ID: "br-british", SpeciesID: "cat"},
			{ID: "br-corgi", SpeciesID: "dog"},
		},
		Groups: []models.PetGroup{
			{ID: "g-cats", PetSpeciesID: "cat"},
			{ID: "g-persian", PetSpeciesID: "cat", PetBreedID: &breed},
		},
	}
}

func TestValidatePet(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	in := PetInput{
		Name: "Mochi", SpeciesID: "cat", BreedID: "br-british", GroupID: "g-cats",
		Age: "2", Weight: "4.25", Gender: models.GenderFemale, ArrivalDate: "2024-01-01",
	}
	require.True(t, ValidatePet(in, testRefs(), now).OK())

	bad := in
	bad.BreedID = "br-corgi"
	bad.GroupID = "g-persian"
	errs := ValidatePet(bad, testRefs(), now)
	require.Contains(t, errs, "breed_id")
	require.Contains(t, errs, "group_id")

	bad = in
	bad.Color = strings.Repeat("x", 31)
	bad.HealthStatus = "DEAD"
	errs = ValidatePet(bad, testRefs(), now)
	require.Contains(t, errs, "color")
	require.Contains(t, errs, "health_status")
	require.Len(t, errs, 2)
}

func TestToPet_DefaultsHealthy(t *testing.T) {
	p := ToPet(PetInput{Name: " Mochi ", Age: "3", Weight: "4.5"})
	require.Equal(t, "Mochi", p.Name)
	require.Equal(t, 3, p.Age)
	require.InDelta(t, 4.5, p.Weight, 1e-9)
	require.Equal(t, models.HealthStatusHealthy, p.HealthStatus)
	require.Nil(t, p.GroupID)

	back := FromPet(p)
	require.Equal(t, FlexString("4.5"), back.Weight)
}

func TestFlexString_Unmarshal(t *testing.T) {
	var in PetInput
	require.NoError(t, json.Unmarshal([]byte(`{"age":3,"weight":"4.25"}`), &in))
	require.Equal(t, FlexString("3"), in.Age)
	require.Equal(t, FlexString("4.25"), in.Weight)

	require.NoError(t, json.Unmarshal([]byte(`{"age":null,"weight":50.555}`), &in))
	require.Equal(t, FlexString(""), in.Age)
	require.NotEmpty(t, ValidateWeight(string(in.Weight)))
}

func TestValidateGroup(t *testing.T) {
	require.True(t, ValidateGroup(GroupInput{Name: "Nhóm mèo", PetSpeciesID: "cat"}, testRefs()).OK())

	errs := ValidateGroup(GroupInput{Name: "N", PetSpeciesID: "cat", PetBreedID: "br-corgi"}, testRefs())
	require.Contains(t, errs, "name")
	require.Contains(t, errs, "pet_breed_id")

	g := ToGroup(GroupInput{Name: "Nhóm", PetSpeciesID: "cat"})
	require.True(t, g.AllBreeds())
}

func TestEligibilityReason(t *testing.T) {
	refs := testRefs()
	other := "g-other"

	require.Empty(t, EligibilityReason(models.Pet{SpeciesID: "cat", BreedID: "br-british"}, refs.Groups[0]))
	require.Equal(t, ReasonInOtherGroup, EligibilityReason(models.Pet{SpeciesID: "cat", GroupID: &other}, refs.Groups[0]))
	require.Equal(t, ReasonSpeciesMismatch, EligibilityReason(models.Pet{SpeciesID: "dog"}, refs.Groups[0]))
	require.Equal(t, ReasonBreedMismatch, EligibilityReason(models.Pet{SpeciesID: "cat", BreedID: "br-british"}, refs.Groups[1]))

	require.Len(t, refs.GroupsFor("cat", "br-persian"), 2)
	require.Len(t, refs.BreedsOf("dog"), 1)
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	pngData := encodePNG(t)
	require.Empty(t, ValidateImage("image/png", pngData))

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black}), nil))
	require.Empty(t, ValidateImage("image/gif", gifBuf.Bytes()))

	require.NotEmpty(t, ValidateImage("image/png", nil))
	require.NotEmpty(t, ValidateImage("image/bmp", pngData))
	require.NotEmpty(t, ValidateImage("image/png", []byte("plain text, not an image")))
	// header sniffs as png, body is garbage
	require.NotEmpty(t, ValidateImage("image/png", append(pngData[:8:8], []byte("garbage")...)))
	require.NotEmpty(t, ValidateImage("image/jpeg", make([]byte, MaxImageBytes+1)))
}
