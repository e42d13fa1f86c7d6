package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v3"
	"github.com/google/uuid"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
	"github.com/YuminosukeSato/regpipe/pkg/log"
)

// JobsAPI is the part of *armmachinelearning.JobsClient used by AzureSubmitter.
type JobsAPI interface {
	CreateOrUpdate(ctx context.Context, resourceGroupName, workspaceName, id string,
		body armmachinelearning.JobBase,
		options *armmachinelearning.JobsClientCreateOrUpdateOptions,
	) (armmachinelearning.JobsClientCreateOrUpdateResponse, error)
}

// AzureSubmitter creates command jobs in an Azure Machine Learning workspace.
type AzureSubmitter struct {
	subscriptionID string
	resourceGroup  string
	workspace      string

	jobs   JobsAPI
	logger log.Logger
}

var _ Submitter = (*AzureSubmitter)(nil)

// NewAzureSubmitter authenticates with DefaultAzureCredential (environment, workload
// identity, managed identity or Azure CLI) and targets the workspace named in cfg.
func NewAzureSubmitter(cfg *config.Config) (*AzureSubmitter, error) {
	if err := cfg.RequireAzure(); err != nil {
		return nil, err
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain Azure credentials")
	}
	client, err := armmachinelearning.NewJobsClient(cfg.Azure.SubscriptionID, cred, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Azure ML jobs client")
	}
	return NewAzureSubmitterWithClient(cfg, client)
}

// NewAzureSubmitterWithClient is NewAzureSubmitter with a caller-supplied jobs client.
func NewAzureSubmitterWithClient(cfg *config.Config, jobs JobsAPI) (*AzureSubmitter, error) {
	if err := cfg.RequireAzure(); err != nil {
		return nil, err
	}
	return &AzureSubmitter{
		subscriptionID: cfg.Azure.SubscriptionID,
		resourceGroup:  cfg.Azure.ResourceGroup,
		workspace:      cfg.Azure.WorkspaceName,
		jobs:           jobs,
		logger: log.GetLoggerWithName("remote").With(
			"azure.workspace", cfg.Azure.WorkspaceName,
			"azure.resource_group", cfg.Azure.ResourceGroup,
		),
	}, nil
}

// computeID returns the ARM id of a compute target in the workspace. Values that already
// look like an id or an azureml: reference are passed through.
func (s *AzureSubmitter) computeID(compute string) string {
	if strings.HasPrefix(compute, "/") || strings.HasPrefix(compute, "azureml:") {
		return compute
	}
	return fmt.Sprintf(
		"/subscriptions/%s/resourceGroups/%s/providers/Microsoft.MachineLearningServices/workspaces/%s/computes/%s",
		s.subscriptionID, s.resourceGroup, s.workspace, compute)
}

// environmentID turns a curated environment name into an azureml: reference to its
// latest version.
func environmentID(env string) string {
	if strings.HasPrefix(env, "/") || strings.HasPrefix(env, "azureml:") {
		return env
	}
	if strings.ContainsAny(env, "@:") {
		return "azureml:" + env
	}
	return "azureml:" + env + "@latest"
}

func ptrMap(m map[string]string) map[string]*string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]*string, len(m))
	for k, v := range m {
		out[k] = to.Ptr(v)
	}
	return out
}

// Submit creates job as an Azure ML command job and returns without waiting for it.
func (s *AzureSubmitter) Submit(ctx context.Context, job Job) (JobStatus, error) {
	switch {
	case job.Command == "":
		return JobStatus{}, errors.NewValidationError("command", "must not be empty", job.Command)
	case job.Environment == "":
		return JobStatus{}, errors.NewValidationError("environment", "must not be empty", job.Environment)
	case job.Compute == "":
		return JobStatus{}, errors.NewValidationError("compute", "must not be empty", job.Compute)
	}

	name := job.Name
	if name == "" {
		name = "regpipe-" + uuid.NewString()
	}
	display := job.DisplayName
	if display == "" {
		display = name
	}

	cmd := &armmachinelearning.CommandJob{
		JobType:              to.Ptr(armmachinelearning.JobTypeCommand),
		Command:              to.Ptr(job.Command),
		EnvironmentID:        to.Ptr(environmentID(job.Environment)),
		ComputeID:            to.Ptr(s.computeID(job.Compute)),
		DisplayName:          to.Ptr(display),
		EnvironmentVariables: ptrMap(job.EnvironmentVariables),
		Tags:                 ptrMap(job.Tags),
	}
	if job.ExperimentName != "" {
		cmd.ExperimentName = to.Ptr(job.ExperimentName)
	}
	if job.Description != "" {
		cmd.Description = to.Ptr(job.Description)
	}

	s.logger.Info("Submitting job", "job.name", name, "job.compute", job.Compute)
	resp, err := s.jobs.CreateOrUpdate(ctx, s.resourceGroup, s.workspace, name,
		armmachinelearning.JobBase{Properties: cmd}, nil)
	if err != nil {
		s.logger.Error("Job submission failed", err, "job.name", name)
		return JobStatus{}, errors.Wrapf(err, "failed to submit Azure ML job %s", name)
	}

	status := JobStatus{Name: name}
	if resp.ID != nil {
		status.ID = *resp.ID
	}
	if resp.Name != nil {
		status.Name = *resp.Name
	}
	if resp.Properties != nil {
		props := resp.Properties.GetJobBaseProperties()
		if props.Status != nil {
			status.Status = string(*props.Status)
		}
		if studio, ok := props.Services["Studio"]; ok && studio != nil && studio.Endpoint != nil {
			status.StudioURL = *studio.Endpoint
		}
	}

	s.logger.Info("Job submitted", "job.id", status.ID, "job.status", status.Status)
	return status, nil
}
