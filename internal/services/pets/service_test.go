package pets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	apifake "github.com/BearBump/PetCafe/internal/integrations/cafeapi/fake"
	uploadfake "github.com/BearBump/PetCafe/internal/integrations/upload/fake"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite

	api      *apifake.Backend
	uploader *uploadfake.Uploader
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.api = apifake.NewSeeded()
	s.uploader = uploadfake.New("")
	s.svc = New(s.api, s.uploader)
	s.svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
}

func validInput() validation.PetInput {
	return validation.PetInput{
		Name: "Sữa", SpeciesID: "sp-cat", BreedID: "br-british", GroupID: "grp-cats",
		Age: "1", Weight: "3.5", Gender: models.GenderFemale, ArrivalDate: "2025-05-01",
	}
}

func pngBytes(s *ServiceSuite) []byte {
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func (s *ServiceSuite) TestSave_CreateWithImage() {
	img := &Image{Filename: "sua.png", ContentType: "image/png", Data: pngBytes(s)}

	p, errs, err := s.svc.Save(context.Background(), "", validInput(), img)
	s.Require().NoError(err)
	s.Require().Nil(errs)
	s.Require().NotEmpty(p.ID)
	s.Require().Contains(p.ImageURL, "https://files.petcafe.local/pets/")
	s.Require().Equal(models.HealthStatusHealthy, p.HealthStatus)
	s.Require().True(p.InGroup("grp-cats"))
	s.Require().Equal(1, s.uploader.Count())
}

func (s *ServiceSuite) TestSave_FieldErrorsStopBeforeWrites() {
	in := validInput()
	in.Weight = "50.555"
	img := &Image{Filename: "x.png", ContentType: "image/png", Data: []byte("nope")}

	p, errs, err := s.svc.Save(context.Background(), "", in, img)
	s.Require().NoError(err)
	s.Require().Nil(p)
	s.Require().Contains(errs, "weight")
	s.Require().Contains(errs, "image")
	s.Require().Zero(s.uploader.Count())
	s.Require().Zero(s.api.Calls("CreatePet"))
}

func (s *ServiceSuite) TestSave_UpdateMissingPet() {
	_, _, err := s.svc.Save(context.Background(), "ghost", validInput(), nil)
	s.Require().ErrorIs(err, cafeapi.ErrPetNotFound)
}

func (s *ServiceSuite) TestSave_RefsFailure() {
	s.api.FailOn("ListBreeds", "", errors.New("down"))
	_, _, err := s.svc.Save(context.Background(), "", validInput(), nil)
	s.Require().ErrorContains(err, "list breeds")
}

func (s *ServiceSuite) TestDetail_AllOrNothing() {
	d, err := s.svc.Detail(context.Background(), "pet-1")
	s.Require().NoError(err)
	s.Require().Equal("Mochi", d.Pet.Name)
	s.Require().NotNil(d.Health)
	s.Require().NotNil(d.Vaccinations)

	s.api.FailOn("ListVaccinationRecords", "pet-1", errors.New("boom"))
	_, err = s.svc.Detail(context.Background(), "pet-1")
	s.Require().Error(err)
}

func (s *ServiceSuite) TestList() {
	res, err := s.svc.List(context.Background(), Filter{SpeciesID: "sp-cat"})
	s.Require().NoError(err)
	s.Require().Equal(2, res.Total)
	s.Require().Equal(3, res.Stats.Total)
}

func (s *ServiceSuite) TestFormFor_Existing() {
	f, err := s.svc.FormFor(context.Background(), "pet-2")
	s.Require().NoError(err)
	s.Require().Equal("br-persian", f.Input.BreedID)
	s.Require().Len(f.Options().Breeds, 2)
}

func (s *ServiceSuite) TestHealthStatusOptions() {
	s.Require().Len(s.svc.HealthStatusOptions(context.Background()), len(models.HealthStatuses))
}

func (s *ServiceSuite) TestUploadImage_Invalid() {
	url, errs, err := s.svc.UploadImage(context.Background(), Image{ContentType: "application/pdf", Data: []byte("%PDF")})
	s.Require().NoError(err)
	s.Require().Empty(url)
	s.Require().Contains(errs, "image")
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
