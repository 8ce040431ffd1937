// Package github publishes exported suites and generated test code as
// GitHub gists.
//
// Authentication uses a personal access token with the gist scope, read
// from the publish.github_token setting.
package github
