package dockerfile

// DockerfileTemplate renders the ordered provisioning procedure as a
// Dockerfile. One layer per step: the bindings step becomes an ENV block
// so every later layer compiles against the bound paths; each RUN step
// chains its commands so a single failure aborts the whole layer.
const DockerfileTemplate = `# Generated by cultienv. Do not edit by hand.
# Rebuilds are driven by the content hash of this file.
FROM {{.BaseImage}}

LABEL {{.LabelPrefix}}.managed="true" \
      {{.LabelPrefix}}.project="{{.Project}}" \
      {{.LabelPrefix}}.toolkit="{{.Toolkit}}" \
      {{.LabelPrefix}}.triple="{{.Triple}}"
{{range .Steps}}
# {{.Name}}
{{- if .Env}}
ENV {{range $i, $b := .Env}}{{if $i}} \
    {{end}}{{$b.Key}}="{{$b.Value}}"{{end}}
{{- else}}
RUN {{range $i, $c := .Commands}}{{if $i}} && \
    {{end}}{{$c}}{{end}}
{{- end}}
{{end}}
CMD ["{{.Entrypoint}}"]
`
