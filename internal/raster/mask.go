package raster

import "fmt"

// Mask is a boolean layer on a grid, row-major.
type Mask struct {
	Width  int
	Height int
	Data   []bool
}

func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Data: make([]bool, width*height)}
}

func FullMask(width, height int, value bool) Mask {
	m := NewMask(width, height)
	if value {
		for i := range m.Data {
			m.Data[i] = true
		}
	}
	return m
}

func (m Mask) At(col, row int) bool {
	if col < 0 || col >= m.Width || row < 0 || row >= m.Height {
		return false
	}
	return m.Data[row*m.Width+col]
}

func (m Mask) Set(col, row int, v bool) {
	m.Data[row*m.Width+col] = v
}

func (m Mask) Clone() Mask {
	c := NewMask(m.Width, m.Height)
	copy(c.Data, m.Data)
	return c
}

func (m Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

func (m Mask) Not() Mask {
	c := NewMask(m.Width, m.Height)
	for i, v := range m.Data {
		c.Data[i] = !v
	}
	return c
}

func (m Mask) sameShape(o Mask) error {
	if m.Width != o.Width || m.Height != o.Height {
		return fmt.Errorf("mask shape %dx%d does not match %dx%d", m.Width, m.Height, o.Width, o.Height)
	}
	return nil
}

// And returns the intersection of the masks; shapes must match.
func (m Mask) And(others ...Mask) Mask {
	c := m.Clone()
	for _, o := range others {
		if err := c.sameShape(o); err != nil {
			panic(err)
		}
		for i := range c.Data {
			c.Data[i] = c.Data[i] && o.Data[i]
		}
	}
	return c
}

// Or returns the union of the masks; shapes must match.
func (m Mask) Or(others ...Mask) Mask {
	c := m.Clone()
	for _, o := range others {
		if err := c.sameShape(o); err != nil {
			panic(err)
		}
		for i := range c.Data {
			c.Data[i] = c.Data[i] || o.Data[i]
		}
	}
	return c
}

func (m Mask) Equal(o Mask) bool {
	if m.sameShape(o) != nil {
		return false
	}
	for i := range m.Data {
		if m.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}
