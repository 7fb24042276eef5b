package service

import "labgate.app/gateway/internal/task"

// JobDescription is a catalog entry for one job kind the platform runs.
type JobDescription struct {
	Kind        task.JobKind
	Description string
}

// JobCatalogService lists the job kinds callers may submit.
type JobCatalogService interface {
	List() []JobDescription
}

type jobCatalog struct{}

func NewJobCatalogService() JobCatalogService {
	return jobCatalog{}
}

var jobDescriptions = map[task.JobKind]string{
	task.KindLiterature: "Literature search: ask a question of scientific data sources and receive a cited response.",
	task.KindAnalysis:   "Data analysis: turn biological datasets into detailed analyses answering research questions.",
	task.KindPrecedent:  "Precedent search: query whether anyone has ever done something in science.",
	task.KindMolecules:  "Chemistry tasks: cheminformatics tooling for planning synthesis and designing molecules.",
	task.KindDummy:      "Dummy task, mainly for testing.",
}

func (jobCatalog) List() []JobDescription {
	kinds := task.Kinds()
	out := make([]JobDescription, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, JobDescription{Kind: k, Description: jobDescriptions[k]})
	}
	return out
}
