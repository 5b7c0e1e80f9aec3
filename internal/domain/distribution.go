package domain

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Bucket is one label/count pair of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution is a label->count mapping that remembers first-seen order.
type Distribution struct {
	buckets []Bucket
	index   map[string]int
}

// NewDistribution returns an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{index: make(map[string]int)}
}

// DistributionOf builds a distribution from ordered buckets. Repeated
// labels are summed into the first occurrence.
func DistributionOf(buckets ...Bucket) *Distribution {
	d := NewDistribution()
	for _, b := range buckets {
		d.AddN(b.Label, b.Count)
	}
	return d
}

// Add increments the count for label by one.
func (d *Distribution) Add(label string) {
	d.AddN(label, 1)
}

// AddN increments the count for label by n.
func (d *Distribution) AddN(label string, n int) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[label]; ok {
		d.buckets[i].Count += n
		return
	}
	d.index[label] = len(d.buckets)
	d.buckets = append(d.buckets, Bucket{Label: label, Count: n})
}

// Count returns the count for label, zero when unseen.
func (d *Distribution) Count(label string) int {
	if d == nil {
		return 0
	}
	if i, ok := d.index[label]; ok {
		return d.buckets[i].Count
	}
	return 0
}

// Len is the number of distinct labels.
func (d *Distribution) Len() int {
	if d == nil {
		return 0
	}
	return len(d.buckets)
}

// Total sums all counts.
func (d *Distribution) Total() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, b := range d.buckets {
		total += b.Count
	}
	return total
}

// Buckets returns a copy of the buckets in first-seen order.
func (d *Distribution) Buckets() []Bucket {
	if d == nil {
		return nil
	}
	out := make([]Bucket, len(d.buckets))
	copy(out, d.buckets)
	return out
}

// MarshalJSON writes an object whose keys keep first-seen order.
func (d *Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if d != nil {
		for i, b := range d.buckets {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(b.Label)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(b.Count))
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
