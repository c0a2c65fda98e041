package user

import "errors"

var ErrInvalidField = errors.New("unknown profile field")

// ProfileField identifies a single profile column that can be read or
// written through the narrow field endpoints. Narrow single-column
// mutations let concurrent updates to different fields on the same
// account coexist without clobbering each other.
type ProfileField string

const (
	FieldNickname           ProfileField = "nickname"
	FieldBio                ProfileField = "bio"
	FieldLocation           ProfileField = "location"
	FieldProfilePictureURL  ProfileField = "profile-picture"
	FieldGithubProfileURL   ProfileField = "github-profile"
	FieldLinkedinProfileURL ProfileField = "linkedin-profile"
)

// profileFieldColumns maps URL path segments to users table columns.
// Only columns listed here are reachable through the field endpoints.
var profileFieldColumns = map[ProfileField]string{
	FieldNickname:           "nickname",
	FieldBio:                "bio",
	FieldLocation:           "location",
	FieldProfilePictureURL:  "profile_picture_url",
	FieldGithubProfileURL:   "github_profile_url",
	FieldLinkedinProfileURL: "linkedin_profile_url",
}

// ParseProfileField validates a path segment as a profile field
func ParseProfileField(s string) (ProfileField, error) {
	f := ProfileField(s)
	if _, ok := profileFieldColumns[f]; !ok {
		return "", ErrInvalidField
	}
	return f, nil
}

// Column returns the database column backing the field
func (f ProfileField) Column() string {
	return profileFieldColumns[f]
}

// ValueFrom reads the field's current value off a domain user
func (f ProfileField) ValueFrom(u *User) string {
	switch f {
	case FieldNickname:
		return u.Nickname
	case FieldBio:
		return u.Bio
	case FieldLocation:
		return u.Location
	case FieldProfilePictureURL:
		return u.ProfilePictureURL
	case FieldGithubProfileURL:
		return u.GithubProfileURL
	case FieldLinkedinProfileURL:
		return u.LinkedinProfileURL
	}
	return ""
}

// ResponseKey returns the JSON key used when a single field is returned
func (f ProfileField) ResponseKey() string {
	return profileFieldColumns[f]
}
