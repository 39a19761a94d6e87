package remote

// Tensor is one named input or output of the KServe v2 inference protocol.
type Tensor struct {
	Name     string  `json:"name"`
	Shape    []int64 `json:"shape"`
	Datatype string  `json:"datatype"`
	Data     any     `json:"data,omitempty"`
}

// InferRequest is the body of POST /v2/models/{name}/infer.
type InferRequest struct {
	ID      string            `json:"id,omitempty"`
	Inputs  []Tensor          `json:"inputs"`
	Outputs []RequestedOutput `json:"outputs,omitempty"`
}

// RequestedOutput selects an output tensor by name.
type RequestedOutput struct {
	Name string `json:"name"`
}

// InferResponse is the successful response of an infer call.
type InferResponse struct {
	ModelName string         `json:"model_name"`
	ID        string         `json:"id,omitempty"`
	Outputs   []OutputTensor `json:"outputs"`
}

// OutputTensor carries FP32 data flattened in row-major order.
type OutputTensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

// MetadataResponse is the body of GET /v2/models/{name}.
type MetadataResponse struct {
	Name    string           `json:"name"`
	Outputs []TensorMetadata `json:"outputs"`
}

// TensorMetadata describes a tensor; -1 marks a variable dimension.
type TensorMetadata struct {
	Name     string  `json:"name"`
	Datatype string  `json:"datatype"`
	Shape    []int64 `json:"shape"`
}

// errorResponse is returned by servers on failure.
type errorResponse struct {
	Error string `json:"error"`
}
