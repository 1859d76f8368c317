package aggregate

import (
	"strconv"

	"flatdb/dberror"

	"golang.org/x/exp/constraints"
)

// Number is any type the reductions can work over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Count returns the number of values. Unless all is set, empty values are
// not counted.
func Count(values []string, all bool) int {
	if all {
		return len(values)
	}
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}

// Sum adds up the non-empty values.
func Sum(values []string) (int64, error) {
	nums, err := parse(values)
	if err != nil {
		return 0, err
	}
	return total(nums), nil
}

// Average returns the mean of the non-empty values, or 0 when there are none.
func Average(values []string) (float64, error) {
	nums, err := parse(values)
	if err != nil {
		return 0, err
	}
	return mean(nums), nil
}

// Min returns the smallest non-empty value. ok is false when there is none.
func Min(values []string) (min int64, ok bool, err error) {
	nums, err := parse(values)
	if err != nil {
		return 0, false, err
	}
	min, ok = extreme(nums, func(a, b int64) bool { return a < b })
	return min, ok, nil
}

// Max returns the largest non-empty value. ok is false when there is none.
func Max(values []string) (max int64, ok bool, err error) {
	nums, err := parse(values)
	if err != nil {
		return 0, false, err
	}
	max, ok = extreme(nums, func(a, b int64) bool { return a > b })
	return max, ok, nil
}

func parse(values []string) ([]int64, error) {
	nums := make([]int64, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, dberror.New("aggregate", dberror.ErrEncoding, "value %q is not an integer", v)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func total[T Number](nums []T) T {
	var sum T
	for _, n := range nums {
		sum += n
	}
	return sum
}

func mean[T Number](nums []T) float64 {
	if len(nums) == 0 {
		return 0
	}
	return float64(total(nums)) / float64(len(nums))
}

func extreme[T constraints.Ordered](nums []T, better func(a, b T) bool) (T, bool) {
	var best T
	if len(nums) == 0 {
		return best, false
	}
	best = nums[0]
	for _, n := range nums[1:] {
		if better(n, best) {
			best = n
		}
	}
	return best, true
}
