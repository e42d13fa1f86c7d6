package remote

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regpipe/config"
	"github.com/YuminosukeSato/regpipe/pkg/errors"
)

type fakeJobs struct {
	resourceGroup string
	workspace     string
	id            string
	body          armmachinelearning.JobBase

	err error
}

func (f *fakeJobs) CreateOrUpdate(_ context.Context, resourceGroupName, workspaceName, id string,
	body armmachinelearning.JobBase, _ *armmachinelearning.JobsClientCreateOrUpdateOptions,
) (armmachinelearning.JobsClientCreateOrUpdateResponse, error) {
	f.resourceGroup, f.workspace, f.id, f.body = resourceGroupName, workspaceName, id, body
	if f.err != nil {
		return armmachinelearning.JobsClientCreateOrUpdateResponse{}, f.err
	}

	props := *body.Properties.(*armmachinelearning.CommandJob)
	props.Status = to.Ptr(armmachinelearning.JobStatusStarting)
	props.Services = map[string]*armmachinelearning.JobService{
		"Studio": {Endpoint: to.Ptr("https://ml.azure.com/runs/" + id)},
	}
	return armmachinelearning.JobsClientCreateOrUpdateResponse{
		JobBase: armmachinelearning.JobBase{
			ID:         to.Ptr("/jobs/" + id),
			Name:       to.Ptr(id),
			Properties: &props,
		},
	}, nil
}

func azureConfig() *config.Config {
	cfg := config.Default()
	cfg.Azure.SubscriptionID = "sub-123"
	cfg.Azure.ResourceGroup = "rg-ml"
	cfg.Azure.WorkspaceName = "ws-ml"
	cfg.Model.Type = "ridge"
	return cfg
}

func TestAzureSubmitterSubmit(t *testing.T) {
	cfg := azureConfig()
	fake := &fakeJobs{}
	s, err := NewAzureSubmitterWithClient(cfg, fake)
	require.NoError(t, err)

	job := JobFromConfig(cfg)
	job.Name = "regpipe-test"
	status, err := s.Submit(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, "rg-ml", fake.resourceGroup)
	assert.Equal(t, "ws-ml", fake.workspace)
	assert.Equal(t, "regpipe-test", fake.id)

	cmd, ok := fake.body.Properties.(*armmachinelearning.CommandJob)
	require.True(t, ok)
	assert.Equal(t, armmachinelearning.JobTypeCommand, *cmd.JobType)
	assert.Equal(t, DefaultCommand, *cmd.Command)
	assert.Equal(t, "azureml:AzureML-sklearn-1.0@latest", *cmd.EnvironmentID)
	assert.Equal(t,
		"/subscriptions/sub-123/resourceGroups/rg-ml/providers/Microsoft.MachineLearningServices/workspaces/ws-ml/computes/cpu-cluster",
		*cmd.ComputeID)
	assert.Equal(t, "ridge", *cmd.EnvironmentVariables["MODEL_TYPE"])
	assert.Equal(t, "1", *cmd.EnvironmentVariables["RIDGE_ALPHA"])
	assert.Equal(t, "regpipe", *cmd.ExperimentName)

	assert.Equal(t, JobStatus{
		ID:        "/jobs/regpipe-test",
		Name:      "regpipe-test",
		Status:    "Starting",
		StudioURL: "https://ml.azure.com/runs/regpipe-test",
	}, status)
}

func TestAzureSubmitterGeneratesName(t *testing.T) {
	fake := &fakeJobs{}
	s, err := NewAzureSubmitterWithClient(azureConfig(), fake)
	require.NoError(t, err)

	status, err := s.Submit(context.Background(), Job{
		Command:     "regpipe experiment all",
		Environment: "azureml:custom-env:3",
		Compute:     "azureml:gpu",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^regpipe-[0-9a-f-]{36}$`, fake.id)
	assert.Equal(t, fake.id, status.Name)

	cmd := fake.body.Properties.(*armmachinelearning.CommandJob)
	assert.Equal(t, "azureml:custom-env:3", *cmd.EnvironmentID)
	assert.Equal(t, "azureml:gpu", *cmd.ComputeID)
	assert.Equal(t, fake.id, *cmd.DisplayName)
	assert.Nil(t, cmd.ExperimentName)
}

func TestAzureSubmitterErrors(t *testing.T) {
	fake := &fakeJobs{err: errors.New("403 forbidden")}
	s, err := NewAzureSubmitterWithClient(azureConfig(), fake)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), Job{Environment: "env", Compute: "c"})
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
	assert.Empty(t, fake.id, "invalid job must not reach the service")

	_, err = s.Submit(context.Background(), JobFromConfig(azureConfig()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestNewAzureSubmitterRequiresWorkspace(t *testing.T) {
	cfg := config.Default()
	_, err := NewAzureSubmitter(cfg)
	var cfgErr *errors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "AZURE_SUBSCRIPTION_ID", cfgErr.Setting)
}

func TestJobFromConfig(t *testing.T) {
	cfg := config.Default()
	job := JobFromConfig(cfg)

	assert.Equal(t, "cpu-cluster", job.Compute)
	assert.Equal(t, "AzureML-sklearn-1.0", job.Environment)
	assert.Equal(t, "linear", job.EnvironmentVariables["MODEL_TYPE"])
	assert.Equal(t, "42", job.EnvironmentVariables["RANDOM_STATE"])
	assert.Equal(t, "0.2", job.EnvironmentVariables["TEST_SIZE"])
	assert.NotContains(t, job.EnvironmentVariables, "DATA_PATH")

	cfg.Data.DataPath = "/data/train.csv"
	job = JobFromConfig(cfg)
	assert.Equal(t, "/data/train.csv", job.EnvironmentVariables["DATA_PATH"])
	assert.Equal(t, "target", job.EnvironmentVariables["TARGET_COLUMN"])
}

func TestJobFromConfigCommand(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, DefaultCommand, JobFromConfig(cfg).Command)

	cfg.Azure.Command = "python -m regpipe_job"
	assert.Equal(t, "python -m regpipe_job", JobFromConfig(cfg).Command)

	cfg.Azure.Command = ""
	assert.Equal(t, DefaultCommand, JobFromConfig(cfg).Command)
}
