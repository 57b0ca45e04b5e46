package ocr

import "strconv"

// Whitelist restricts recognition to characters that appear on receipts.
const Whitelist = "0123456789.,:;-=+*xX×/%№#()" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯабвгдеёжзийклмнопрстуфхцчшщъыьэюя "

// Profile is one recognition configuration applied to every image variant.
type Profile struct {
	Name      string
	Whitelist string
	PSM       int
}

// Profile names.
const (
	ProfileWholePage  = "whole-page"
	ProfileSparse     = "sparse"
	ProfileColumn     = "column"
	ProfileRestricted = "restricted"
)

// DefaultProfiles returns the fixed profile set: whole-page layout, sparse
// text, single column, and a uniform block limited to the receipt charset.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: ProfileWholePage, PSM: 3},
		{Name: ProfileSparse, PSM: 11},
		{Name: ProfileColumn, PSM: 4},
		{Name: ProfileRestricted, PSM: 6, Whitelist: Whitelist},
	}
}

// args renders the profile as tesseract command-line options.
func (p Profile) args() []string {
	args := []string{"--psm", strconv.Itoa(p.PSM)}
	if p.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+p.Whitelist)
	}
	return args
}
