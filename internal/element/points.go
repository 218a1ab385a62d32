package element

import "sort"

// DeletePoints 선형 요소에서 지정한 인덱스의 포인트 제거
// 첫 포인트가 원점이 되도록 좌표를 다시 맞추고 요소 위치를 보정한다.
// 범위를 벗어난 인덱스는 무시한다.
func DeletePoints(el Element, indices []int) Element {
	if len(indices) == 0 || len(el.Points) == 0 {
		return el
	}

	remove := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(el.Points) {
			remove[idx] = true
		}
	}

	points := make([]Point, 0, len(el.Points))
	for i, p := range el.Points {
		if !remove[i] {
			points = append(points, p)
		}
	}

	x, y := el.X, el.Y
	if len(points) > 0 && (points[0].X != 0 || points[0].Y != 0) {
		offset := points[0]
		for i := range points {
			points[i].X -= offset.X
			points[i].Y -= offset.Y
		}
		x += offset.X
		y += offset.Y
	}

	return NewElementWith(el, WithPoints(points), WithPosition(x, y))
}

// NormalizeIndices 중복을 제거하고 오름차순 정렬한 인덱스 목록
func NormalizeIndices(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}
