// Package utils provides loose type conversion helpers shared by the SQL
// executor, the script runtime and the formula functions, where cell values
// arrive as strings, driver values or JavaScript exports.
package utils
