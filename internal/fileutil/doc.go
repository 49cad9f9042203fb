// Package fileutil holds small filesystem helpers shared by the supervisor,
// such as preparing the directory of its lock file.
package fileutil
