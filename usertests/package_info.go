// Package usertests contains the scenarios that are run against the user management API.
//
// Scenarios are grouped the same way as the subtests of RunTestSuite, and each one creates its
// own accounts so that any subset can be selected with the -run and -skip filters. Checks whose
// outcome depends on a known defect of the API are described in tracked_bugs.yaml.
package usertests
