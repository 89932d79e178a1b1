package layout

import (
	"fmt"
	"strconv"
)

// Position 中 Left/Width 是占容器宽度的百分比，渲染宽度为 Width% 减去 PaddingPx 像素
type Position struct {
	Left      float64 `json:"left"`
	Width     float64 `json:"width"`
	PaddingPx int     `json:"paddingPx"`
}

// CSS 返回可直接用于样式的 left 和 width
func (p Position) CSS() (left, width string) {
	left = strconv.FormatFloat(p.Left, 'f', -1, 64) + "%"
	w := strconv.FormatFloat(p.Width, 'f', -1, 64)
	if p.PaddingPx == 0 {
		return left, w + "%"
	}
	return left, fmt.Sprintf("calc(%s%% - %dpx)", w, p.PaddingPx)
}

// Compute 为每个条目分配水平位置：每个重叠簇平分整行，簇内按加入顺序从左到右排列
func Compute(items []TimedItem, paddingPx int) (map[string]Position, error) {
	clusters, err := Group(items)
	if err != nil {
		return nil, err
	}

	positions := make(map[string]Position, len(items))
	for _, c := range clusters {
		n := float64(len(c))
		width := 100 / n
		for i, m := range c {
			positions[m.ID] = Position{
				Left:      float64(i) * 100 / n,
				Width:     width,
				PaddingPx: paddingPx,
			}
		}
	}

	return positions, nil
}
