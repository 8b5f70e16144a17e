package validate

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "simple address", input: "a@b.com", want: true},
		{name: "with subdomain", input: "mario.rossi@mail.example.it", want: true},
		{name: "plus tag", input: "mario+tag@example.com", want: true},
		{name: "not an email", input: "not-an-email", want: false},
		{name: "missing domain", input: "mario@", want: false},
		{name: "missing local part", input: "@example.com", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.input))
		})
	}
}

func TestValidatePassword_DefaultPolicy(t *testing.T) {
	res := ValidatePassword("abc", PasswordPolicy{})

	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors, "password must be at least 8 characters long")
	assert.Contains(t, res.Errors, "password must contain an uppercase letter")
	assert.Contains(t, res.Errors, "password must contain a number")
}

func TestValidatePassword(t *testing.T) {
	no := false
	tests := []struct {
		name    string
		pw      string
		policy  PasswordPolicy
		isValid bool
	}{
		{name: "strong password", pw: "Aquedotto42", policy: PasswordPolicy{}, isValid: true},
		{name: "missing digit", pw: "Aquedotto", policy: PasswordPolicy{}, isValid: false},
		{name: "missing uppercase", pw: "aquedotto42", policy: PasswordPolicy{}, isValid: false},
		{name: "missing lowercase", pw: "AQUEDOTTO42", policy: PasswordPolicy{}, isValid: false},
		{name: "relaxed policy", pw: "aquedotto", policy: PasswordPolicy{MinLength: 6, RequireUppercase: &no, RequireNumber: &no}, isValid: true},
		{name: "longer minimum", pw: "Breve1aa", policy: PasswordPolicy{MinLength: 12}, isValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePassword(tt.pw, tt.policy)
			assert.Equal(t, tt.isValid, res.IsValid)
			if tt.isValid {
				assert.Empty(t, res.Errors)
			} else {
				assert.NotEmpty(t, res.Errors)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "script tag", input: "<script>", want: "&lt;script&gt;"},
		{name: "all escaped chars", input: `&<>"'`, want: "&amp;&lt;&gt;&quot;&#39;"},
		{name: "ampersand first", input: "<&>", want: "&lt;&amp;&gt;"},
		{name: "plain text untouched", input: "tavola calda", want: "tavola calda"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeString(tt.input))
		})
	}
}

func TestIsValidFiscalCode(t *testing.T) {
	assert.True(t, IsValidFiscalCode("RSSMRA85M01H501Z"))
	assert.True(t, IsValidFiscalCode("rssmra85m01h501z"))
	assert.False(t, IsValidFiscalCode("RSSMRA85M01H501"))
	assert.False(t, IsValidFiscalCode("12345678901"))
	assert.False(t, IsValidFiscalCode(""))
}

func TestIsValidVAT(t *testing.T) {
	assert.True(t, IsValidVAT("12345678901"))
	assert.False(t, IsValidVAT("1234567890"))
	assert.False(t, IsValidVAT("1234567890a"))
}

func TestIsValidPostalCode(t *testing.T) {
	assert.True(t, IsValidPostalCode("00184"))
	assert.False(t, IsValidPostalCode("0018"))
	assert.False(t, IsValidPostalCode("I0184"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+39 06 1234567"))
	assert.True(t, IsValidPhone("06-1234567"))
	assert.False(t, IsValidPhone("call me"))
	assert.False(t, IsValidPhone("123"))
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://thermopolio.example/menu"))
	assert.True(t, IsValidURL("http://localhost:8080"))
	assert.False(t, IsValidURL("ftp://example.com"))
	assert.False(t, IsValidURL("/relative/path"))
	assert.False(t, IsValidURL("not a url"))
}

func TestFlattenErrors(t *testing.T) {
	type form struct {
		Username string `validate:"required,min=3"`
		Email    string `validate:"required,email"`
	}

	err := validator.New().Struct(form{Email: "nope"})
	require.Error(t, err)

	flat := FlattenErrors(err.(validator.ValidationErrors))

	assert.Equal(t, []string{"field Username is a required field"}, flat["Username"])
	assert.Equal(t, []string{"field Email must be a valid email"}, flat["Email"])
}
