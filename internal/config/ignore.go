package config

// DefaultIgnoredDomains returns hostnames whose visit ticks are never
// recorded. These are services where time-on-site says nothing about the
// user's attention, or where recording it at all is a privacy liability.
func DefaultIgnoredDomains() []string {
	return []string{
		// Browser-internal pages
		"newtab",
		"extensions",

		// Authentication & identity
		"accounts.google.com",
		"login.microsoftonline.com",
		"login.live.com",
		"auth0.com",
		"okta.com",
		"login.gov",
		"id.me",

		// Password managers
		"1password.com",
		"lastpass.com",
		"bitwarden.com",
		"dashlane.com",

		// Banking & payment portals
		"chase.com",
		"bankofamerica.com",
		"wellsfargo.com",
		"paypal.com",
		"venmo.com",

		// Healthcare portals
		"mychart.com",
		"healthcare.gov",
	}
}
