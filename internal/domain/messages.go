package domain

import "fmt"

func ProjectCreatedMessage(projectName string) string {
	return fmt.Sprintf("A new project '%s' has been created and you have been added.", projectName)
}

func ProjectUpdatedMessage(projectName string) string {
	return fmt.Sprintf("Project '%s' has been updated.", projectName)
}

func ProjectDeletedMessage(projectName string) string {
	return fmt.Sprintf("Project '%s' has been deleted.", projectName)
}

func ManagerAssignedMessage(projectID int64) string {
	return fmt.Sprintf("Project manager has been assigned/updated for project ID %d", projectID)
}
