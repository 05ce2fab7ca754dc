package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key holding the JTI of a student's login.
func (r *CacheKeyStruct) StudentSessionKey(subjectID string) string {
	return fmt.Sprintf("login:%s", subjectID)
}

// CourseQuestionsKey returns the cache key for a course's ordered question set.
func (r *CacheKeyStruct) CourseQuestionsKey(courseID string) string {
	return fmt.Sprintf("course:%s:questions", courseID)
}

// StudentActiveTestKey marks a student as having a live test session on some node.
func (r *CacheKeyStruct) StudentActiveTestKey(subjectID string) string {
	return fmt.Sprintf("student:%s:active_test", subjectID)
}

// StudentLatestResultKey holds the last submission record handed to the sink.
func (r *CacheKeyStruct) StudentLatestResultKey(subjectID string) string {
	return fmt.Sprintf("student:%s:latest_result", subjectID)
}

// StudentPendingSubmissionKey marks a course submission that is queued but not
// yet persisted. The submission worker deletes it after the write.
func (r *CacheKeyStruct) StudentPendingSubmissionKey(subjectID, courseID string) string {
	return fmt.Sprintf("student:%s:pending_submission:%s", subjectID, courseID)
}

var CacheKey = NewCacheKeyStruct()
