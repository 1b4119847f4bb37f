package transport

import "testing"

func TestExtractErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "email field wins",
			raw:  `{"email":["Enter a valid email address."],"password":["Too short."]}`,
			want: "Enter a valid email address.",
		},
		{
			name: "password after email",
			raw:  `{"password":["Too short."],"non_field_errors":["nope"]}`,
			want: "Too short.",
		},
		{
			name: "non_field_errors",
			raw:  `{"non_field_errors":["Invalid email or password"]}`,
			want: "Invalid email or password",
		},
		{
			name: "detail scalar",
			raw:  `{"detail":"Not found."}`,
			want: "Not found.",
		},
		{
			name: "error scalar",
			raw:  `{"error":"Problem not found"}`,
			want: "Problem not found",
		},
		{
			name: "known field beats scalar detail",
			raw:  `{"detail":"nope","email":["Enter a valid email address."]}`,
			want: "Enter a valid email address.",
		},
		{
			name: "first list value of unknown field",
			raw:  `{"username":["This field may not be blank."]}`,
			want: "This field may not be blank.",
		},
		{
			name: "unknown fields pick deterministically",
			raw:  `{"zeta":["z"],"alpha":["a"]}`,
			want: "a",
		},
		{
			name: "empty body",
			raw:  ``,
			want: "Request failed",
		},
		{
			name: "non-object body",
			raw:  `"boom"`,
			want: "Request failed",
		},
		{
			name: "object without usable values",
			raw:  `{"count":3}`,
			want: "Request failed",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractErrorMessage([]byte(tc.raw)); got != tc.want {
				t.Fatalf("ExtractErrorMessage(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
