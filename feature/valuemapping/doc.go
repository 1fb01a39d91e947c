// Package valuemapping manages named string to string dictionaries used to
// translate source values into the target value domain before matching.
//
// Deleting a mapping never deletes the match rules that reference it;
// dependents clear their references through OnDelete hooks.
package valuemapping
