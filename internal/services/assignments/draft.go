package assignments

import (
	"sort"
	"strings"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/pkg/errors"
)

var (
	ErrWrongMode       = errors.New("Thao tác không phù hợp với loại nhiệm vụ")
	ErrUnknownSlot     = errors.New("Không tìm thấy ca làm việc")
	ErrSlotExists      = errors.New("Ca làm việc đã tồn tại")
	ErrLeaderNotMember = errors.New("Trưởng nhóm phải là thành viên của nhóm")
	ErrDuplicateStaff  = errors.New("Nhân viên bị trùng trong nhóm")
	ErrEmptyGroupName  = errors.New("Tên nhóm không được để trống")
	ErrPetGroupCount   = errors.New("Số lượng thú cưng phải lớn hơn 0")
	ErrIndexOutOfRange = errors.New("Nhóm nhân viên không tồn tại")
)

// NewDraft returns an empty draft; internal tasks start with their single bucket.
func NewDraft(taskID, mode string) (models.AssignmentDraft, error) {
	d := models.AssignmentDraft{TaskID: taskID, Mode: mode}
	switch mode {
	case models.AssignmentModeInternal:
		d.Internal = &models.SlotAssignment{}
	case models.AssignmentModeService:
		d.Slots = map[string]models.SlotAssignment{}
	default:
		return models.AssignmentDraft{}, ErrWrongMode
	}
	return d, nil
}

func clone(d models.AssignmentDraft) models.AssignmentDraft {
	out := d
	if d.Internal != nil {
		b := cloneBucket(*d.Internal)
		out.Internal = &b
	}
	if d.Slots != nil {
		out.Slots = make(map[string]models.SlotAssignment, len(d.Slots))
		for k, v := range d.Slots {
			out.Slots[k] = cloneBucket(v)
		}
	}
	return out
}

func cloneBucket(b models.SlotAssignment) models.SlotAssignment {
	out := models.SlotAssignment{
		AreaIDs:   append([]string(nil), b.AreaIDs...),
		PetGroups: append([]models.PetGroupPick(nil), b.PetGroups...),
	}
	for _, sg := range b.StaffGroups {
		sg.StaffIDs = append([]string(nil), sg.StaffIDs...)
		out.StaffGroups = append(out.StaffGroups, sg)
	}
	return out
}

func bucket(d models.AssignmentDraft, slot string) (models.SlotAssignment, error) {
	switch d.Mode {
	case models.AssignmentModeInternal:
		if slot != "" || d.Internal == nil {
			return models.SlotAssignment{}, ErrWrongMode
		}
		return *d.Internal, nil
	case models.AssignmentModeService:
		b, ok := d.Slots[slot]
		if !ok {
			return models.SlotAssignment{}, ErrUnknownSlot
		}
		return b, nil
	}
	return models.SlotAssignment{}, ErrWrongMode
}

// update applies fn to a copy of the slot's bucket and returns a new draft.
func update(d models.AssignmentDraft, slot string, fn func(*models.SlotAssignment) error) (models.AssignmentDraft, error) {
	out := clone(d)
	b, err := bucket(out, slot)
	if err != nil {
		return d, err
	}
	if err := fn(&b); err != nil {
		return d, err
	}
	if out.Mode == models.AssignmentModeInternal {
		out.Internal = &b
	} else {
		out.Slots[slot] = b
	}
	return out, nil
}

func SetAreas(d models.AssignmentDraft, slot string, areaIDs []string) (models.AssignmentDraft, error) {
	return update(d, slot, func(b *models.SlotAssignment) error {
		b.AreaIDs = uniq(areaIDs)
		return nil
	})
}

// AddPetGroup adds a pick, replacing the count of an existing pick with the same name.
func AddPetGroup(d models.AssignmentDraft, slot string, pick models.PetGroupPick) (models.AssignmentDraft, error) {
	pick.GroupName = strings.TrimSpace(pick.GroupName)
	if pick.GroupName == "" {
		return d, ErrEmptyGroupName
	}
	if pick.Count < 1 {
		return d, ErrPetGroupCount
	}
	return update(d, slot, func(b *models.SlotAssignment) error {
		for i := range b.PetGroups {
			if b.PetGroups[i].GroupName == pick.GroupName {
				b.PetGroups[i].Count = pick.Count
				return nil
			}
		}
		b.PetGroups = append(b.PetGroups, pick)
		return nil
	})
}

func RemovePetGroup(d models.AssignmentDraft, slot, groupName string) (models.AssignmentDraft, error) {
	return update(d, slot, func(b *models.SlotAssignment) error {
		out := b.PetGroups[:0]
		for _, p := range b.PetGroups {
			if p.GroupName != groupName {
				out = append(out, p)
			}
		}
		b.PetGroups = out
		return nil
	})
}

func CheckStaffGroup(sg models.StaffGroup) error {
	if strings.TrimSpace(sg.Name) == "" {
		return ErrEmptyGroupName
	}
	seen := make(map[string]struct{}, len(sg.StaffIDs))
	for _, id := range sg.StaffIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateStaff
		}
		seen[id] = struct{}{}
	}
	if sg.LeaderID != "" {
		if _, ok := seen[sg.LeaderID]; !ok {
			return ErrLeaderNotMember
		}
	}
	return nil
}

func AddStaffGroup(d models.AssignmentDraft, slot string, sg models.StaffGroup) (models.AssignmentDraft, error) {
	if err := CheckStaffGroup(sg); err != nil {
		return d, err
	}
	return update(d, slot, func(b *models.SlotAssignment) error {
		b.StaffGroups = append(b.StaffGroups, sg)
		return nil
	})
}

func UpdateStaffGroup(d models.AssignmentDraft, slot string, index int, sg models.StaffGroup) (models.AssignmentDraft, error) {
	if err := CheckStaffGroup(sg); err != nil {
		return d, err
	}
	return update(d, slot, func(b *models.SlotAssignment) error {
		if index < 0 || index >= len(b.StaffGroups) {
			return ErrIndexOutOfRange
		}
		b.StaffGroups[index] = sg
		return nil
	})
}

func RemoveStaffGroup(d models.AssignmentDraft, slot string, index int) (models.AssignmentDraft, error) {
	return update(d, slot, func(b *models.SlotAssignment) error {
		if index < 0 || index >= len(b.StaffGroups) {
			return ErrIndexOutOfRange
		}
		b.StaffGroups = append(b.StaffGroups[:index], b.StaffGroups[index+1:]...)
		return nil
	})
}

func AddSlot(d models.AssignmentDraft, slot string) (models.AssignmentDraft, error) {
	if d.Mode != models.AssignmentModeService {
		return d, ErrWrongMode
	}
	if slot == "" {
		return d, ErrUnknownSlot
	}
	if _, ok := d.Slots[slot]; ok {
		return d, ErrSlotExists
	}
	out := clone(d)
	if out.Slots == nil {
		out.Slots = map[string]models.SlotAssignment{}
	}
	out.Slots[slot] = models.SlotAssignment{}
	return out, nil
}

func RemoveSlot(d models.AssignmentDraft, slot string) (models.AssignmentDraft, error) {
	if d.Mode != models.AssignmentModeService {
		return d, ErrWrongMode
	}
	if _, ok := d.Slots[slot]; !ok {
		return d, ErrUnknownSlot
	}
	out := clone(d)
	delete(out.Slots, slot)
	return out, nil
}

// Check runs the per-group rules over every bucket of the draft.
func Check(d models.AssignmentDraft) error {
	var buckets []models.SlotAssignment
	switch d.Mode {
	case models.AssignmentModeInternal:
		if d.Internal == nil {
			return ErrWrongMode
		}
		buckets = append(buckets, *d.Internal)
	case models.AssignmentModeService:
		for _, b := range d.Slots {
			buckets = append(buckets, b)
		}
	default:
		return ErrWrongMode
	}
	for _, b := range buckets {
		for _, p := range b.PetGroups {
			if p.Count < 1 {
				return ErrPetGroupCount
			}
		}
		for _, sg := range b.StaffGroups {
			if err := CheckStaffGroup(sg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Conflict is a staff member assigned to more than one slot.
type Conflict struct {
	StaffID string   `json:"staff_id"`
	Slots   []string `json:"slots"`
}

// Conflicts reports cross-slot staff overlaps. They are warnings and never
// block saving or submitting.
func Conflicts(d models.AssignmentDraft) []Conflict {
	bySlot := map[string]map[string]struct{}{}
	for slot, b := range d.Slots {
		for _, sg := range b.StaffGroups {
			for _, id := range sg.StaffIDs {
				if bySlot[id] == nil {
					bySlot[id] = map[string]struct{}{}
				}
				bySlot[id][slot] = struct{}{}
			}
		}
	}

	out := []Conflict{}
	for id, slots := range bySlot {
		if len(slots) < 2 {
			continue
		}
		c := Conflict{StaffID: id}
		for s := range slots {
			c.Slots = append(c.Slots, s)
		}
		sort.Strings(c.Slots)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
