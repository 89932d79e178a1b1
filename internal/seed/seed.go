// Package seed 从 YAML 文件导入初始数据
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

type Store interface {
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	CreateShiftTemplate(ctx context.Context, st *domain.ShiftTemplate) error
	CreateEvent(ctx context.Context, e *domain.Event) error
	CreateToolRental(ctx context.Context, t *domain.ToolRental) error
}

type UserFixture struct {
	Username string `yaml:"username"`
	FullName string `yaml:"fullName"`
	Email    string `yaml:"email"`
	Tags     struct {
		IsStaff        bool `yaml:"isStaff"`
		Worker         bool `yaml:"worker"`
		Instructor     bool `yaml:"instructor"`
		ToolHandler    bool `yaml:"toolHandler"`
		Manager        bool `yaml:"manager"`
		RentalApproved bool `yaml:"rentalApproved"`
	} `yaml:"tags"`
}

type RequirementFixture struct {
	StartTime      string `yaml:"startTime"`
	EndTime        string `yaml:"endTime"`
	MinWorkers     int32  `yaml:"minWorkers"`
	OptimalWorkers int32  `yaml:"optimalWorkers"`
	Note           string `yaml:"note"`
}

type ShiftTemplateFixture struct {
	Name          string               `yaml:"name"`
	Names         map[string]string    `yaml:"names"`
	OpenTime      string               `yaml:"openTime"`
	CloseTime     string               `yaml:"closeTime"`
	RecurringDays []int32              `yaml:"recurringDays"`
	Color         string               `yaml:"color"`
	Requirements  []RequirementFixture `yaml:"requirements"`
}

// EventFixture 和 RentalFixture 用用户名引用用户
type EventFixture struct {
	Title        string             `yaml:"title"`
	Date         string             `yaml:"date"`
	StartTime    string             `yaml:"startTime"`
	EndTime      string             `yaml:"endTime"`
	Status       domain.EventStatus `yaml:"status"`
	CreatedBy    string             `yaml:"createdBy"`
	Assignees    []string           `yaml:"assignees"`
	Participants []string           `yaml:"participants"`
}

type RentalFixture struct {
	ToolName   string                  `yaml:"toolName"`
	Renter     string                  `yaml:"renter"`
	StartDate  string                  `yaml:"startDate"`
	EndDate    string                  `yaml:"endDate"`
	PickupTime string                  `yaml:"pickupTime"`
	ReturnTime string                  `yaml:"returnTime"`
	Status     domain.ToolRentalStatus `yaml:"status"`
}

type Fixtures struct {
	Users          []UserFixture          `yaml:"users"`
	ShiftTemplates []ShiftTemplateFixture `yaml:"shiftTemplates"`
	Events         []EventFixture         `yaml:"events"`
	Rentals        []RentalFixture        `yaml:"rentals"`
}

type Result struct {
	Users          int
	SkippedUsers   int
	ShiftTemplates int
	Events         int
	Rentals        int
}

func LoadFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse 拒绝未知字段，拼写错误的键会直接报错
func Parse(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	fx := &Fixtures{}
	if err := dec.Decode(fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("解析种子文件失败: %w", err)
	}
	return fx, nil
}

func (f UserFixture) toUser() *domain.User {
	return &domain.User{
		Username: f.Username,
		FullName: f.FullName,
		Email:    f.Email,
		Tags: domain.Tags{
			IsStaff:           f.Tags.IsStaff || f.Tags.Worker || f.Tags.Instructor || f.Tags.ToolHandler || f.Tags.Manager,
			WorkerTag:         f.Tags.Worker,
			InstructorTag:     f.Tags.Instructor,
			ToolHandlerTag:    f.Tags.ToolHandler,
			ManagerTag:        f.Tags.Manager,
			RentalApprovedTag: f.Tags.RentalApproved,
		},
		IsActive: true,
	}
}

func (f ShiftTemplateFixture) toShiftTemplate() (*domain.ShiftTemplate, error) {
	st := &domain.ShiftTemplate{
		Name:          f.Name,
		OpenTime:      f.OpenTime,
		CloseTime:     f.CloseTime,
		RecurringDays: f.RecurringDays,
		Color:         f.Color,
	}
	for code, text := range f.Names {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			return nil, fmt.Errorf("班次 %s: %w", f.Name, err)
		}
		st.Names.Set(lang, text)
	}
	for _, req := range f.Requirements {
		st.Requirements = append(st.Requirements, domain.HourlyRequirement(req))
	}

	if err := utils.ValidateShiftTemplate(st); err != nil {
		return nil, fmt.Errorf("班次 %s: %w", f.Name, err)
	}
	return st, nil
}

// Apply 按用户、班次、活动、租借的顺序写入，用户名已存在的用户会被跳过并复用
func Apply(ctx context.Context, store Store, fx *Fixtures) (Result, error) {
	res := Result{}

	existing, err := store.GetAllUsers(ctx)
	if err != nil {
		return res, err
	}
	ids := make(map[string]int64, len(existing)+len(fx.Users))
	for _, u := range existing {
		ids[u.Username] = u.ID
	}

	for _, f := range fx.Users {
		if _, ok := ids[f.Username]; ok {
			res.SkippedUsers++
			continue
		}
		user := f.toUser()
		if err := store.CreateUser(ctx, user); err != nil {
			return res, fmt.Errorf("无法插入用户 %s: %w", f.Username, err)
		}
		ids[f.Username] = user.ID
		res.Users++
	}

	lookup := func(username string) (int64, error) {
		id, ok := ids[username]
		if !ok {
			return 0, fmt.Errorf("用户 %s 不存在: %w", username, domain.ErrNotFound)
		}
		return id, nil
	}
	lookupAll := func(usernames []string) ([]int64, error) {
		out := make([]int64, 0, len(usernames))
		for _, name := range usernames {
			id, err := lookup(name)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, nil
	}

	for _, f := range fx.ShiftTemplates {
		st, err := f.toShiftTemplate()
		if err != nil {
			return res, err
		}
		if err := store.CreateShiftTemplate(ctx, st); err != nil {
			return res, fmt.Errorf("无法插入班次 %s: %w", f.Name, err)
		}
		res.ShiftTemplates++
	}

	for _, f := range fx.Events {
		createdBy, err := lookup(f.CreatedBy)
		if err != nil {
			return res, fmt.Errorf("活动 %s: %w", f.Title, err)
		}
		assignees, err := lookupAll(f.Assignees)
		if err != nil {
			return res, fmt.Errorf("活动 %s: %w", f.Title, err)
		}
		participants, err := lookupAll(f.Participants)
		if err != nil {
			return res, fmt.Errorf("活动 %s: %w", f.Title, err)
		}

		status := f.Status
		if status == "" {
			status = domain.EventPending
		}

		e := &domain.Event{
			Title:          f.Title,
			Date:           f.Date,
			StartTime:      f.StartTime,
			EndTime:        f.EndTime,
			Status:         status,
			CreatedBy:      createdBy,
			AssigneeIDs:    assignees,
			ParticipantIDs: participants,
		}
		if err := utils.ValidateEvent(e); err != nil {
			return res, fmt.Errorf("活动 %s: %w", f.Title, err)
		}
		if err := store.CreateEvent(ctx, e); err != nil {
			return res, fmt.Errorf("无法插入活动 %s: %w", f.Title, err)
		}
		res.Events++
	}

	for _, f := range fx.Rentals {
		renter, err := lookup(f.Renter)
		if err != nil {
			return res, fmt.Errorf("租借 %s: %w", f.ToolName, err)
		}

		status := f.Status
		if status == "" {
			status = domain.RentalPending
		}
		endDate := f.EndDate
		if endDate == "" {
			endDate = f.StartDate
		}

		t := &domain.ToolRental{
			ToolName:        f.ToolName,
			RenterID:        renter,
			RentalStartDate: f.StartDate,
			RentalEndDate:   endDate,
			PickupTime:      f.PickupTime,
			ReturnTime:      f.ReturnTime,
			Status:          status,
		}
		if err := utils.ValidateToolRental(t); err != nil {
			return res, fmt.Errorf("租借 %s: %w", f.ToolName, err)
		}
		if err := store.CreateToolRental(ctx, t); err != nil {
			return res, fmt.Errorf("无法插入租借 %s: %w", f.ToolName, err)
		}
		res.Rentals++
	}

	slog.Info("导入种子数据成功",
		slog.Int("users", res.Users),
		slog.Int("skippedUsers", res.SkippedUsers),
		slog.Int("shiftTemplates", res.ShiftTemplates),
		slog.Int("events", res.Events),
		slog.Int("rentals", res.Rentals),
	)
	return res, nil
}
