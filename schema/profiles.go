package schema

import "fmt"

// Profile bundles everything type-specific the metrics pipeline needs:
// which raw statuses exist and how they group, which severity scale
// applies, and how the tracker should query for records of this type.
type Profile struct {
	Source        Source   // ticketing backend the profile belongs to
	IssueType     string   // user-facing issue type name
	Record        string   // clearquest record family, empty for jira
	InitialStatus string   // synthetic first status, empty when unknown
	Priorities    []string // ordered severity scale, nil when absent
	QueryTypes    []string // type names matched when querying the tracker
	Taxonomy      Taxonomy
}

// HasPriorities reports whether issues of this type carry a severity
// scale and therefore produce severity count grids.
func (p Profile) HasPriorities() bool {
	return len(p.Priorities) > 0
}

// jiraTaxonomy is shared by every jira issue type. The workflow only
// differs between types in which statuses actually occur, not in how
// they group.
var jiraTaxonomy = Taxonomy{Groups: []StatusGroup{
	{"New", []string{"New"}},
	{"Open", []string{"Approved", "Open", "Reopened", "Deferred", "In Progress", "Change Ready", "Change Required", "In Review", "Pending Approval"}},
	{"In Dev", []string{"In Dev", "In Analysis", "Dev Lead", "Dev Lead Review"}},
	{"In Test", []string{"Build Ready", "Test Ready", "Passed to Test", "Build Pending", "Test Build Pending", "Deployed", "Deployed to Test", "Smoke Test", "In Test", "Test Defects Pending", "Test Lead Review"}},
	{"In Prod", []string{"Passed to Prod", "Prod Build Pending", "Prod Defects Pending"}},
	{"Resolved", []string{"Resolved"}},
	{"Closed", []string{"Closed"}},
}}

var cqEngChangeTaxonomy = Taxonomy{Groups: []StatusGroup{
	{"Submitted", []string{"Submitted"}},
	{"In Review", []string{"In Review", "Review Complete"}},
	{"Ready For Release", []string{"Ready For Release"}},
	{"Void", []string{"Void"}},
	{"Closed", []string{"Closed"}},
}}

var cqEngNoticeTaxonomy = Taxonomy{Groups: []StatusGroup{
	{"Submitted", []string{"Submitted"}},
	{"ID Generated", []string{"ID Generated"}},
	{"In Review", []string{"Ready For Review", "In Review", "Review Complete"}},
	{"Ready For Release", []string{"Ready For Release"}},
	{"Void", []string{"Void"}},
	{"Closed", []string{"Closed"}},
}}

var cqDevReleaseTaxonomy = Taxonomy{Groups: []StatusGroup{
	{"Submitted", []string{"Submitted"}},
	{"Dev Release Approved", []string{"Dev Release Approved"}},
	{"In Build", []string{"Waiting To Build", "Build Failed", "Build Approved"}},
	{"In Engineering", []string{"Engineering Test", "Engineering Failed"}},
	{"In Release", []string{"Ready For Release", "Dev Release Failed", "Dev Release Passed"}},
	{"Closed", []string{"Closed"}},
}}

var cqProdReleaseTaxonomy = Taxonomy{Groups: []StatusGroup{
	{"Submitted", []string{"Submitted"}},
	{"Program Approved", []string{"Program Approved"}},
	{"In Review", []string{"Engg Reviewed", "CCB Approved", "CCB Rejected", "Patch CM", "Patch Reviewed"}},
	{"In Build", []string{"Waiting To Build", "Build Failed", "Build Approved"}},
	{"In Engineering", []string{"Engineering Test", "Engineering Failed", "Ready For Release"}},
	{"In System Testing", []string{"System Testing", "System Test Failed"}},
	{"In Fielding", []string{"Ready To Field", "Field Test In Progress", "Field Test Failed", "Fielded"}},
	{"SE Approved", []string{"SE Reviewed", "SE Approved"}},
	{"Cancelled", []string{"Release Withdrawn", "Cancelled"}},
	{"Closed", []string{"Closed"}},
}}

var cqChangeReqTaxonomy = Taxonomy{Groups: []StatusGroup{
	{"New", []string{"New"}},
	{"Open", []string{"Assigned", "Open", "Wait", "Approved", "Resolved", "Verified", "Merged", "Postponed", "Duplicate"}},
	{"Document Impacted", []string{"Document Impacted"}},
	{"In Test", []string{"Baselined", "System Tested", "Ready To Field", "Fielded"}},
	{"SE Reviewed", []string{"SE Reviewed", "SE Approved"}},
	{"Closed", []string{"Closed"}},
}}

// jiraProfile stamps out the common jira profile shape. Subtask types
// count toward their parent type when querying.
func jiraProfile(issueType string, queryTypes ...string) Profile {
	return Profile{
		Source:        JiraSource,
		IssueType:     issueType,
		InitialStatus: "New",
		Priorities:    DefaultPriorities,
		QueryTypes:    append([]string{issueType}, queryTypes...),
		Taxonomy:      jiraTaxonomy,
	}
}

func clearQuestProfile(issueType, record string, priorities []string, tax Taxonomy) Profile {
	return Profile{
		Source:     ClearQuestSource,
		IssueType:  issueType,
		Record:     record,
		Priorities: priorities,
		QueryTypes: []string{issueType},
		Taxonomy:   tax,
	}
}

// GetProfile resolves the built-in profile for a source and issue type.
func GetProfile(source Source, issueType string) (Profile, error) {
	switch source {
	case JiraSource:
		switch issueType {
		case DefectType:
			return jiraProfile(DefectType, "Defect Subtask"), nil
		case ChangeReqType:
			return jiraProfile(ChangeReqType, "CR Sub Task"), nil
		case TaskType:
			return jiraProfile(TaskType, "Task Sub Task"), nil
		case ComplianceType:
			return jiraProfile(ComplianceType), nil
		}
	case ClearQuestSource:
		switch issueType {
		case EngChangeType:
			return clearQuestProfile(EngChangeType, RecordDCR, nil, cqEngChangeTaxonomy), nil
		case EngNoticeType:
			return clearQuestProfile(EngNoticeType, RecordDCR, nil, cqEngNoticeTaxonomy), nil
		case DevReleaseType:
			return clearQuestProfile(DevReleaseType, RecordRR, nil, cqDevReleaseTaxonomy), nil
		case ProdRelease:
			return clearQuestProfile(ProdRelease, RecordRR, nil, cqProdReleaseTaxonomy), nil
		case DefectType:
			return clearQuestProfile(DefectType, RecordSCR, DefaultPriorities, cqChangeReqTaxonomy), nil
		case EnhanceType:
			return clearQuestProfile(EnhanceType, RecordSCR, DefaultPriorities, cqChangeReqTaxonomy), nil
		}
	default:
		return Profile{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
	return Profile{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedIssueType, source, issueType)
}

// IssueTypes lists the issue types with built-in profiles for a source,
// in a stable display order.
func IssueTypes(source Source) []string {
	switch source {
	case JiraSource:
		return []string{DefectType, ChangeReqType, TaskType, ComplianceType}
	case ClearQuestSource:
		return []string{DefectType, EnhanceType, EngChangeType, EngNoticeType, DevReleaseType, ProdRelease}
	default:
		return nil
	}
}
