package appsync

import (
	"regexp"
	"strings"
)

// standardDomainPattern matches the canonical AppSync GraphQL endpoint shape
// https://{26}.appsync-api.{region-components}.amazonaws.com(.cn)?/graphql
var standardDomainPattern = regexp.MustCompile(`^https://[a-z0-9]{26}\.appsync-api\.[a-z0-9-]+\.amazonaws\.com(\.cn)?/graphql$`)

// realtimeURL derives the realtime endpoint for a given https:// GraphQL
// endpoint, using scheme in place of "wss" (tests substitute "ws" against a
// plain-HTTP fake server). Standard AppSync domains rewrite appsync-api to
// appsync-realtime-api (and the beta alias gogi-beta to grt-beta); custom
// domains append /realtime instead.
func realtimeURL(endpoint, scheme string) string {
	if standardDomainPattern.MatchString(endpoint) {
		host := strings.Replace(endpoint, "appsync-api", "appsync-realtime-api", 1)
		host = strings.Replace(host, "gogi-beta", "grt-beta", 1)

		return scheme + "://" + strings.TrimPrefix(host, "https://")
	}

	return scheme + "://" + strings.TrimPrefix(endpoint, "https://") + "/realtime"
}
