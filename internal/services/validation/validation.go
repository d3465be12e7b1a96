package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BearBump/PetCafe/internal/models"
)

const (
	PetNameMaxLen   = 50
	GroupNameMaxLen = 100
	NameMinLen      = 2
	ColorMaxLen     = 30
	TextMaxLen      = 500
	MaxWeight       = 100
	MaxAge          = 30
	ArrivalMaxYears = 20
)

// FieldErrors maps a form field to its message. Empty means valid.
type FieldErrors map[string]string

func (f FieldErrors) OK() bool { return len(f) == 0 }

func (f FieldErrors) add(field, msg string) {
	if msg != "" {
		f[field] = msg
	}
}

var (
	nameRe   = regexp.MustCompile(`^[a-zA-Z0-9 À-ỹ]+$`)
	weightRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	phoneRe  = regexp.MustCompile(`^(0|\+84)[0-9]{9,10}$`)
)

func ValidateName(name string) string {
	return validateName(name, PetNameMaxLen)
}

func ValidateGroupName(name string) string {
	return validateName(name, GroupNameMaxLen)
}

func validateName(name string, max int) string {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "Tên không được để trống"
	case n < NameMinLen:
		return fmt.Sprintf("Tên phải có ít nhất %d ký tự", NameMinLen)
	case n > max:
		return fmt.Sprintf("Tên không được vượt quá %d ký tự", max)
	case !nameRe.MatchString(name):
		return "Tên chỉ được chứa chữ cái, số và khoảng trắng"
	}
	return ""
}

func ValidateWeight(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Cân nặng không được để trống"
	}
	if !weightRe.MatchString(raw) {
		return "Cân nặng phải là số"
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "Cân nặng phải là số"
	}
	if w <= 0 {
		return "Cân nặng phải lớn hơn 0"
	}
	if w > MaxWeight {
		return fmt.Sprintf("Cân nặng không được vượt quá %d kg", MaxWeight)
	}
	if i := strings.IndexByte(raw, '.'); i >= 0 && len(raw)-i-1 > 2 {
		return "Cân nặng chỉ được có tối đa 2 chữ số thập phân"
	}
	return ""
}

func ValidateAge(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Tuổi không được để trống"
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return "Tuổi phải là số nguyên"
	}
	if age < 0 || age > MaxAge {
		return fmt.Sprintf("Tuổi phải từ 0 đến %d", MaxAge)
	}
	return ""
}

// ValidateArrivalDate accepts an empty value; the field is optional.
func ValidateArrivalDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, now.Location())
	if err != nil {
		return "Ngày đến không hợp lệ (YYYY-MM-DD)"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.After(today) {
		return "Ngày đến không được ở tương lai"
	}
	if d.Before(today.AddDate(-ArrivalMaxYears, 0, 0)) {
		return fmt.Sprintf("Ngày đến không được quá %d năm trước", ArrivalMaxYears)
	}
	return ""
}

func ValidateMaxLen(label, s string, max int) string {
	if utf8.RuneCountInString(s) > max {
		return fmt.Sprintf("%s không được vượt quá %d ký tự", label, max)
	}
	return ""
}

func ValidateGender(g string) string {
	switch g {
	case models.GenderMale, models.GenderFemale, models.GenderUnknown:
		return ""
	case "":
		return "Vui lòng chọn giới tính"
	}
	return "Giới tính không hợp lệ"
}

// ValidateHealthStatus accepts "" since the status defaults to HEALTHY.
func ValidateHealthStatus(s string) string {
	if s == "" {
		return ""
	}
	for _, v := range models.HealthStatuses {
		if v == s {
			return ""
		}
	}
	return "Tình trạng sức khỏe không hợp lệ"
}

func ValidatePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "Số điện thoại không được để trống"
	}
	if !phoneRe.MatchString(phone) {
		return "Số điện thoại không hợp lệ"
	}
	return ""
}

// ValidateFullName checks a customer name on checkout: 2..100 runes.
func ValidateFullName(name string) string {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "Họ tên không được để trống"
	case n < NameMinLen || n > GroupNameMaxLen:
		return fmt.Sprintf("Họ tên phải từ %d đến %d ký tự", NameMinLen, GroupNameMaxLen)
	}
	return ""
}
