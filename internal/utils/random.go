package utils

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomTags 员工总带有 IsStaff，其余能力标记随机
func GenerateRandomTags() domain.Tags {
	tags := domain.Tags{
		WorkerTag:         rand.Intn(2) == 0,
		InstructorTag:     rand.Intn(4) == 0,
		ToolHandlerTag:    rand.Intn(4) == 0,
		ManagerTag:        rand.Intn(8) == 0,
		RentalApprovedTag: rand.Intn(3) == 0,
	}
	tags.IsStaff = tags.WorkerTag || tags.InstructorTag || tags.ToolHandlerTag || tags.ManagerTag
	return tags
}

func GenerateRandomUser(emailDomainName string) *domain.User {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)

	return &domain.User{
		Username: username,
		FullName: fullName,
		Email:    username + "@" + emailDomainName,
		Tags:     GenerateRandomTags(),
		IsActive: true,
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func GenerateRandomID(letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rand.Intn(len(letters))]
		} else {
			randomID[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(randomID)
}

// 用 Fisher-Yates 洗牌算法来生成随机的适用日期
func GenerateRandomRecurringDays() []int32 {
	days := []int32{1, 2, 3, 4, 5, 6, 7}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1
	days = days[:n]
	slices.Sort(days)
	return days
}

var shiftColors = []string{"#4f46e5", "#16a34a", "#ea580c", "#0891b2", "#db2777"}

// GenerateRandomShiftTemplate 生成 07:00 到 22:00 之间的一个班次，需求按整点切分
func GenerateRandomShiftTemplate() *domain.ShiftTemplate {
	openHour := rand.Intn(8) + 7             // 07~14
	closeHour := openHour + rand.Intn(6) + 3 // 至少 3 小时
	closeHour = min(closeHour, 22)

	st := &domain.ShiftTemplate{
		Name:          "班次" + GenerateRandomID(3, 3),
		OpenTime:      FormatClock(openHour * 60),
		CloseTime:     FormatClock(closeHour * 60),
		RecurringDays: GenerateRandomRecurringDays(),
		Color:         shiftColors[rand.Intn(len(shiftColors))],
	}
	st.Names.EN = fmt.Sprintf("Shift %s-%s", st.OpenTime, st.CloseTime)

	for hour := openHour; hour < closeHour; {
		span := min(rand.Intn(3)+1, closeHour-hour)
		minWorkers := int32(rand.Intn(3) + 1)
		st.Requirements = append(st.Requirements, domain.HourlyRequirement{
			StartTime:      FormatClock(hour * 60),
			EndTime:        FormatClock((hour + span) * 60),
			MinWorkers:     minWorkers,
			OptimalWorkers: minWorkers + int32(rand.Intn(3)),
		})
		hour += span
	}

	return st
}
