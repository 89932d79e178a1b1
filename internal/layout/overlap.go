package layout

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/utils"
)

// TimedItem 是任何可以归约为 {id, startTime, endTime} 的对象
type TimedItem interface {
	TimedID() string
	TimeRange() (start, end string)
}

// Item 是 TimedItem 的最简实现
type Item struct {
	ID        string
	StartTime string
	EndTime   string
}

func (i Item) TimedID() string                { return i.ID }
func (i Item) TimeRange() (start, end string) { return i.StartTime, i.EndTime }

// Member 是簇中的一个成员，Start/End 为分钟数
type Member struct {
	ID    string
	Start int
	End   int
}

// Cluster 中成员的顺序即加入簇的顺序
type Cluster []Member

func (c Cluster) overlaps(m Member) bool {
	for _, other := range c {
		if utils.Overlaps(m.Start, m.End, other.Start, other.End) {
			return true
		}
	}
	return false
}

// Group 按输入顺序把同一天的条目划分为重叠簇
//
// 通过任意一条两两重叠链相连的条目属于同一个簇。一个条目同时和多个已有簇重叠时，
// 这些簇会被合并到最早的那个簇中。起止时间相同的条目宽度为零，不参与布局。
func Group(items []TimedItem) ([]Cluster, error) {
	var clusters []Cluster

	for _, item := range items {
		startStr, endStr := item.TimeRange()
		start, err := utils.ParseClock(startStr)
		if err != nil {
			return nil, fmt.Errorf("条目 %s: %w", item.TimedID(), err)
		}
		end, err := utils.ParseClock(endStr)
		if err != nil {
			return nil, fmt.Errorf("条目 %s: %w", item.TimedID(), err)
		}
		if start > end {
			return nil, fmt.Errorf("条目 %s 的结束时间早于开始时间: %w", item.TimedID(), domain.ErrInvalidTimeRange)
		}
		if start == end {
			continue
		}

		m := Member{ID: item.TimedID(), Start: start, End: end}

		var matched []int
		for ci, c := range clusters {
			if c.overlaps(m) {
				matched = append(matched, ci)
			}
		}

		if len(matched) == 0 {
			clusters = append(clusters, Cluster{m})
			continue
		}

		target := matched[0]
		for _, ci := range matched[1:] {
			clusters[target] = append(clusters[target], clusters[ci]...)
		}
		clusters[target] = append(clusters[target], m)

		// 从后往前删除被合并的簇，保证下标有效
		for i := len(matched) - 1; i >= 1; i-- {
			clusters = slices.Delete(clusters, matched[i], matched[i]+1)
		}
	}

	return clusters, nil
}
