package main

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/normalizer"
)

// placeholderNames tên giả cho cấp city của thành phố trực thuộc trung ương,
// ánh xạ sang hậu tố ghép sau tên province (重庆市 + 辖县)
var placeholderNames = map[string]string{
	"市辖区": "",
	"县":   "辖县",
}

// convertStats thống kê một lần chuyển đổi
type convertStats struct {
	Rows      int
	Provinces int
	Cities    int
	Districts int
	// Dòng dưới cấp district (street, village)
	BelowDistrict int
	// Dòng không tìm thấy region cấp trên
	Orphans int
}

type node struct {
	entry    gazetteer.Entry
	children []*node
}

// convert đọc CSV adcode,name,longitude,latitude và dựng Dataset lồng nhau
func convert(r io.Reader, version string) (*gazetteer.Dataset, convertStats, error) {
	var stats convertStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, stats, err
	}

	nodes := make(map[string]*node)
	var order []string
	levels := make(map[string]models.Level)

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		raw := strings.TrimSpace(field(rec, cols["adcode"]))
		if belowDistrict(raw) {
			stats.BelowDistrict++
			continue
		}
		code, level, err := normalizer.NormalizeCode(raw)
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: %w", stats.Rows+1, err)
		}
		if _, dup := nodes[code]; dup {
			return nil, stats, fmt.Errorf("row %d: duplicate adcode %s", stats.Rows+1, code)
		}

		entry := gazetteer.Entry{
			Code: normalizer.ShortCode(code),
			Name: strings.TrimSpace(field(rec, cols["name"])),
		}
		if entry.Longitude, err = parseCoord(field(rec, cols["longitude"])); err != nil {
			return nil, stats, fmt.Errorf("row %d: longitude: %w", stats.Rows+1, err)
		}
		if entry.Latitude, err = parseCoord(field(rec, cols["latitude"])); err != nil {
			return nil, stats, fmt.Errorf("row %d: latitude: %w", stats.Rows+1, err)
		}

		nodes[code] = &node{entry: entry}
		levels[code] = level
		order = append(order, code)
	}

	ds := &gazetteer.Dataset{Version: version}
	var provinces []*node
	for _, code := range order {
		n := nodes[code]
		if levels[code] == models.LevelProvince {
			provinces = append(provinces, n)
			stats.Provinces++
			continue
		}
		parentCode, _ := normalizer.ParentCode(code)
		parent, ok := nodes[parentCode]
		if !ok {
			stats.Orphans++
			continue
		}
		parent.children = append(parent.children, n)
		if levels[code] == models.LevelCity {
			stats.Cities++
		}
	}

	byCode := func(a, b *node) int { return cmp.Compare(a.entry.Code, b.entry.Code) }
	slices.SortFunc(provinces, byCode)
	for _, p := range provinces {
		slices.SortFunc(p.children, byCode)
		province := p.entry
		for _, c := range p.children {
			slices.SortFunc(c.children, byCode)
			city := c.entry
			if suffix, ok := placeholderNames[city.Name]; ok {
				city.Name = province.Name + suffix
			}
			for _, d := range c.children {
				city.Districts = append(city.Districts, d.entry)
				stats.Districts++
			}
			province.Cities = append(province.Cities, city)
		}
		ds.Provinces = append(ds.Provinces, province)
	}
	return ds, stats, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := map[string]int{"adcode": -1, "name": -1, "longitude": -1, "latitude": -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := cols[h]; ok {
			cols[h] = i
		}
	}
	if cols["adcode"] < 0 || cols["name"] < 0 {
		return nil, fmt.Errorf("header must contain adcode and name, got %v", header)
	}
	return cols, nil
}

// belowDistrict nhận ra code 12 chữ số của street/village
func belowDistrict(code string) bool {
	return len(code) == normalizer.CodeWidth && strings.Trim(code[6:], "0") != ""
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseCoord(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
