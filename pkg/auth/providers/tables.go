package providers

import "github.com/trungleviet-agilityio/playwright-training/pkg/types"

// profile is the static heuristic catalog for one table-driven provider:
// where to sign in, which fields take the credentials, and what a
// successful landing looks like.
type profile struct {
	LoginURL string

	EmailSelectors    []string
	PasswordSelectors []string
	SubmitSelectors   []string

	// Success heuristics, checked in order: URL fragments first, then
	// known post-login elements, then page text.
	SuccessURLParts []string
	SuccessSelects  []string
	SuccessTexts    []string

	// Cookie policy: exact names always kept, plus everything on the
	// provider's domains.
	CookieNames   []string
	CookieDomains []string
}

var defaultSubmitSelectors = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button[id*="Next"]`,
}

var profiles = map[types.Provider]profile{
	types.ProviderGoogle: {
		LoginURL:          "https://accounts.google.com/signin",
		EmailSelectors:    []string{`input[type="email"]`, `input[name="identifier"]`},
		PasswordSelectors: []string{`input[type="password"]`, `input[name="Passwd"]`},
		SubmitSelectors:   []string{"#identifierNext", "#passwordNext", `button[type="submit"]`},
		SuccessURLParts:   []string{"myaccount.google.com"},
		SuccessSelects:    []string{`[data-g-label="Account"]`, ".gb_A", `[aria-label*="Google Account"]`},
		SuccessTexts:      []string{"welcome"},
		CookieNames:       []string{"SID", "HSID", "SSID", "SAPISID", "APISID", "session_state"},
		CookieDomains:     []string{"google.com"},
	},
	types.ProviderGitHub: {
		LoginURL:          "https://github.com/login",
		EmailSelectors:    []string{`input[name="login"]`},
		PasswordSelectors: []string{`input[name="password"]`},
		SubmitSelectors:   []string{`input[type="submit"]`, `button[type="submit"]`},
		SuccessURLParts:   []string{"github.com/dashboard"},
		SuccessSelects:    []string{`[data-test-selector="nav-avatar"]`, ".Header-link--profile", `[data-test-selector="dashboard"]`},
		SuccessTexts:      []string{"create repository"},
		CookieNames:       []string{"user_session", "_gh_sess", "__Host-user_session_same_site"},
		CookieDomains:     []string{"github.com"},
	},
	types.ProviderMicrosoft365: {
		LoginURL:          "https://login.microsoftonline.com",
		EmailSelectors:    []string{`input[type="email"]`, `input[name="loginfmt"]`},
		PasswordSelectors: []string{`input[type="password"]`, `input[name="passwd"]`},
		SubmitSelectors:   []string{"#idSIButton9", `input[type="submit"]`, `button[type="submit"]`},
		SuccessURLParts:   []string{"office.com", "portal.office.com"},
		SuccessSelects:    []string{`[data-testid="dashboard"]`, ".ms-nav"},
		SuccessTexts:      []string{"office 365"},
		CookieNames:       []string{"FedAuth", "rtFa", "ESTSAUTH", "ESTSAUTHPERSISTENT"},
		CookieDomains:     []string{"microsoftonline.com", "office.com"},
	},
	types.ProviderOkta: {
		LoginURL:          "https://login.okta.com",
		EmailSelectors:    []string{`input[name="username"]`, `input[type="email"]`},
		PasswordSelectors: []string{`input[name="password"]`, `input[type="password"]`},
		SubmitSelectors:   []string{"#okta-signin-submit", `input[type="submit"]`, `button[type="submit"]`},
		SuccessURLParts:   []string{},
		SuccessSelects:    []string{`[data-se="dashboard"]`, ".dashboard"},
		SuccessTexts:      []string{"applications"},
		CookieNames:       []string{"sid", "DT", "JSESSIONID", "oktaStateToken"},
		CookieDomains:     []string{"okta.com"},
	},
	types.ProviderAtlassian: {
		LoginURL:          "https://id.atlassian.com/login",
		EmailSelectors:    []string{`input[name="username"]`, `input[type="email"]`},
		PasswordSelectors: []string{`input[name="password"]`, `input[type="password"]`},
		SubmitSelectors:   []string{"#login-submit", `button[type="submit"]`},
		SuccessURLParts:   []string{"start.atlassian.com"},
		SuccessSelects:    []string{`[data-testid="navigation"]`, ".atlaskit-navigation"},
		SuccessTexts:      []string{"products"},
		CookieNames:       []string{"JSESSIONID", "AWSALB", "atlassian_account_id"},
		CookieDomains:     []string{"atlassian.com"},
	},
	types.ProviderNotion: {
		LoginURL:          "https://www.notion.so/auth/login",
		EmailSelectors:    []string{`input[type="email"]`},
		PasswordSelectors: []string{`input[type="password"]`},
		SubmitSelectors:   defaultSubmitSelectors,
		SuccessURLParts:   []string{"notion.so/workspace"},
		SuccessSelects:    []string{`[data-testid="dashboard"]`, ".notion-app"},
		SuccessTexts:      []string{"workspace"},
		CookieNames:       []string{"token_v2", "file_token", "notion_user_id"},
		CookieDomains:     []string{"notion.so"},
	},
	types.ProviderSalesforce: {
		LoginURL:          "https://login.salesforce.com",
		EmailSelectors:    []string{`input[type="email"]`, "#username"},
		PasswordSelectors: []string{`input[type="password"]`, "#password"},
		SubmitSelectors:   []string{"#Login", `input[type="submit"]`, `button[type="submit"]`},
		SuccessURLParts:   []string{"lightning.force.com", "salesforce.com/home"},
		SuccessSelects:    []string{".slds-global-header"},
		SuccessTexts:      nil,
		CookieNames:       []string{"sid", "sid_Client", "oid"},
		CookieDomains:     []string{"salesforce.com", "force.com"},
	},
}
