// Package rules is the built-in rule catalog and its fixes.
//
// Rules are plain rule.Rule values built by constructor functions that close
// over the immutable Data they need. Nothing here keeps global mutable state:
// New can be called any number of times with different data.
package rules

import (
	"fmt"
	"sync"

	"sharpfix/internal/diag"
	"sharpfix/internal/fix"
	"sharpfix/internal/rule"
)

// Codes of the built-in rules.
const (
	ArgumentExceptionWithoutParam diag.Code = "MNT3011"
	EqualsSimplification          diag.Code = "MNT3012"
	ReturnFromSwitchArms          diag.Code = "MNT3013"
	DuplicateEventRegistration    diag.Code = "MNT3014"
	EventRaisedInLock             diag.Code = "THR3020"
	ClassicAssertion              diag.Code = "TST4001"
	BlankLineBeforeControlFlow    diag.Code = "SPC6001"
	BlankLineAfterControlFlow     diag.Code = "SPC6002"
	ContractionInComment          diag.Code = "DOC2001"
)

// Categories.
const (
	CategoryMaintainability = "maintainability"
	CategoryThreading       = "threading"
	CategoryTesting         = "testing"
	CategorySpacing         = "spacing"
	CategoryDocumentation   = "documentation"
)

// New builds the catalog and the fix registry from data.
func New(data *Data) (*rule.Catalog, *fix.Registry, error) {
	if data == nil {
		return nil, nil, fmt.Errorf("rules: nil data")
	}
	cat, err := rule.NewCatalog(
		argumentExceptionRule(data),
		equalsRule(),
		switchReturnRule(),
		duplicateRegistrationRule(),
		eventInLockRule(),
		assertionRule(data),
		blankBeforeRule(),
		blankAfterRule(),
		contractionRule(data),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("rules: %w", err)
	}
	reg, err := fix.NewRegistry(
		argumentExceptionFix(),
		equalsFix(),
		switchReturnFix(),
		assertionFix(),
		blankBeforeFix(),
		blankAfterFix(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("rules: %w", err)
	}
	return cat, reg, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *rule.Catalog
	defaultFixes   *fix.Registry
	defaultErr     error
)

// Default returns the catalog built from the embedded data. The result is
// shared and immutable.
func Default() (*rule.Catalog, *fix.Registry, error) {
	defaultOnce.Do(func() {
		var data *Data
		data, defaultErr = DefaultData()
		if defaultErr != nil {
			return
		}
		defaultCatalog, defaultFixes, defaultErr = New(data)
	})
	return defaultCatalog, defaultFixes, defaultErr
}
