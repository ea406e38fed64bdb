// Package profile holds the user career-profile model and the deterministic
// completion scorer that drives profile guidance in the career worker.
package profile

import "strings"

// Profile mirrors the talent-profile document shape. Absent sections
// decode to zero values, which the scorer treats as missing.
type Profile struct {
	Core                       Core                 `json:"core"`
	Experience                 Experience           `json:"experience"`
	Qualification              Qualification        `json:"qualification"`
	Skills                     Skills               `json:"skills"`
	CareerAspirationPreference AspirationPreference `json:"careerAspirationPreference"`
	CareerLocationPreference   LocationPreference   `json:"careerLocationPreference"`
	CareerRolePreference       RolePreference       `json:"careerRolePreference"`
	Language                   Language             `json:"language"`
}

// Core carries identity and title fields used for display.
type Core struct {
	Name          Name   `json:"name"`
	BusinessTitle string `json:"businessTitle"`
	Rank          string `json:"rank"`
}

// Name holds the business display name parts.
type Name struct {
	BusinessFirstName string `json:"businessFirstName"`
	BusinessLastName  string `json:"businessLastName"`
}

// Experience lists past positions.
type Experience struct {
	Experiences []ExperienceEntry `json:"experiences"`
}

// ExperienceEntry is one position on the profile.
type ExperienceEntry struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Qualification lists education and certifications.
type Qualification struct {
	Educations []EducationEntry `json:"educations"`
}

// EducationEntry is one degree or certification.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Skills splits skills into top and additional buckets.
type Skills struct {
	Top        []Skill `json:"top"`
	Additional []Skill `json:"additional"`
}

// Skill is a single named skill.
type Skill struct {
	Name string `json:"name"`
}

// AspirationPreference lists target career aspirations.
type AspirationPreference struct {
	PreferredAspirations []string `json:"preferredAspirations"`
}

// LocationPreference captures relocation willingness.
type LocationPreference struct {
	PreferredRelocationRegions  []string `json:"preferredRelocationRegions"`
	PreferredRelocationTimeline Timeline `json:"preferredRelocationTimeline"`
}

// Timeline is a coded relocation-timeline choice. Code "NO" means the
// user has explicitly declined relocation, which still counts as a
// stated preference.
type Timeline struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RolePreference lists target roles.
type RolePreference struct {
	PreferredRoles []string `json:"preferredRoles"`
}

// Language lists spoken languages with proficiency.
type Language struct {
	Languages []LanguageEntry `json:"languages"`
}

// LanguageEntry is one language with its proficiency level.
type LanguageEntry struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// FirstName returns the business first name.
func (p Profile) FirstName() string {
	return p.Core.Name.BusinessFirstName
}

// DisplayName returns "First Last", trimmed when either part is empty.
func (p Profile) DisplayName() string {
	full := p.Core.Name.BusinessFirstName + " " + p.Core.Name.BusinessLastName
	return strings.TrimSpace(full)
}
